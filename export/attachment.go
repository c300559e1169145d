/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package export

import (
	"errors"

	"github.com/sirupsen/logrus"

	uerrors "github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/jsonstream"
	"github.com/suparena/ugcexport/node"
)

const (
	reasonNoContentNode = "provided resource was not an attachment - no content node"
	reasonNoData        = "provided resource was not an attachment - content node contained no attachment data"
)

// ExtractAttachment writes n as a single attachment into the object the
// writer is currently inside:
//
//	"filename": <node name>, "jcr:mimeType": <type>, "jcr:data": <base64>
//
// The payload is read from the jcr:data property of the jcr:content child
// and streamed into the jcr:data string. When n carries no such content an
// error member is written instead and the failure is listed in the report;
// only writer failures are returned as errors.
func ExtractAttachment(w *jsonstream.Writer, n node.Node, opts ...Option) (*Report, error) {
	options := BuildOptions(opts...)
	if err := ValidateChunkSize(options.ChunkSize); err != nil {
		return nil, err
	}
	labels := LabelsFor(options.Namespace)
	log := options.Logger.WithField("attachment", n.Name())
	report := newReport()
	report.NodesVisited = 1

	missing := func(reason string) (*Report, error) {
		report.Errors = append(report.Errors, uerrors.NewMissingAttachmentError(n.Name(), reason))
		log.Warn(reason)
		if err := w.Key(labels.Error); err != nil {
			return report.finish(), err
		}
		return report.finish(), w.String(reason)
	}

	content, ok := node.Child(n, ContentChild)
	if !ok {
		return missing(reasonNoContentNode)
	}
	mimeType, hasMime := node.Find(content, MimeTypeProperty)
	data, hasData := node.Find(content, DataProperty)
	payload, isBinary := data.(node.Binary)
	if !hasMime || !hasData || !isBinary {
		return missing(reasonNoData)
	}

	if err := w.Key(LabelFilename); err != nil {
		return report.finish(), err
	}
	if err := w.String(n.Name()); err != nil {
		return report.finish(), err
	}
	if err := w.Key(MimeTypeProperty); err != nil {
		return report.finish(), err
	}
	if err := writeScalar(w, mimeType); err != nil {
		return report.finish(), err
	}
	if err := w.Key(DataProperty); err != nil {
		return report.finish(), err
	}

	report.PropertiesWritten = 3
	report.BinaryProperties = 1
	read, err := streamPayload(w, payload.R, options.ChunkSize)
	report.BinaryBytes = read
	if err == nil {
		log.WithField("bytes", read).Debug("exported attachment")
		return report.finish(), nil
	}

	var readErr *uerrors.BinaryReadError
	if !errors.As(err, &readErr) {
		return report.finish(), err
	}
	readErr.Property = DataProperty
	log.WithFields(logrus.Fields{"bytes": read}).WithError(readErr.Err).Warn("attachment read failed, payload truncated")
	report.Errors = append(report.Errors, readErr)
	if err := w.Key(labels.Error); err != nil {
		return report.finish(), err
	}
	return report.finish(), w.String(readErrorMessage(readErr.Err))
}

// writeScalar writes the natural JSON form of a non-binary value.
func writeScalar(w *jsonstream.Writer, v node.Value) error {
	switch tv := v.(type) {
	case node.Scalar:
		return w.Value(tv.V)
	case node.StringList:
		return w.Strings(tv)
	case node.Timestamp:
		return w.Int64(tv.UnixMilli())
	default:
		return w.Value(nil)
	}
}
