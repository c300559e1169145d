/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	uerrors "github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/jsonstream"
	"github.com/suparena/ugcexport/node"
)

// ExtractSubNode writes the properties and children of n as members of the
// object the writer is currently inside. The caller opens and closes that
// object.
//
// Properties and children are written in the order n exposes them. Children
// are nested under the subNodes key and walked depth-first with an explicit
// stack, each child finished before its next sibling starts.
//
// Only writer failures and an exceeded depth bound are returned as errors;
// they abort the walk. A failing binary source is recorded as an error
// member of the node that owns it and listed in the report.
func ExtractSubNode(w *jsonstream.Writer, n node.Node, opts ...Option) (*Report, error) {
	s, err := newSerializer(w, opts)
	if err != nil {
		return nil, err
	}
	err = s.walk(n)
	return s.report.finish(), err
}

type serializer struct {
	w      *jsonstream.Writer
	opts   Options
	labels Labels
	log    *logrus.Entry
	report *Report
}

func newSerializer(w *jsonstream.Writer, opts []Option) (*serializer, error) {
	options := BuildOptions(opts...)
	if err := ValidateChunkSize(options.ChunkSize); err != nil {
		return nil, err
	}
	return &serializer{
		w:      w,
		opts:   options,
		labels: LabelsFor(options.Namespace),
		log:    options.Logger,
		report: newReport(),
	}, nil
}

// pendingChildren is a node whose subNodes object is open.
type pendingChildren struct {
	path     string
	children []node.Node
	next     int
}

func (s *serializer) walk(root node.Node) error {
	children, err := s.writeNode(root, "")
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	stack := []*pendingChildren{{children: children}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next == len(top.children) {
			// close subNodes, then the object of the node that owns it
			if err := s.w.EndObject(); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				if err := s.w.EndObject(); err != nil {
					return err
				}
			}
			continue
		}

		child := top.children[top.next]
		top.next++
		path := joinPath(top.path, child.Name())

		if s.opts.MaxDepth > 0 && len(stack) > s.opts.MaxDepth {
			return fmt.Errorf("%w: node %q is nested %d levels deep, limit is %d",
				uerrors.ErrMaxDepthExceeded, path, len(stack), s.opts.MaxDepth)
		}

		if err := s.w.Key(child.Name()); err != nil {
			return err
		}
		if err := s.w.BeginObject(); err != nil {
			return err
		}
		grandchildren, err := s.writeNode(child, path)
		if err != nil {
			return err
		}
		if len(grandchildren) == 0 {
			if err := s.w.EndObject(); err != nil {
				return err
			}
			continue
		}
		stack = append(stack, &pendingChildren{path: path, children: grandchildren})
	}
	return nil
}

// writeNode writes the properties of n and, if it has children, opens its
// subNodes object. It returns the children still to be written.
func (s *serializer) writeNode(n node.Node, path string) ([]node.Node, error) {
	var timestampFields []string
	for _, p := range n.Properties() {
		isTimestamp, err := s.writeProperty(p, path)
		if err != nil {
			return nil, err
		}
		if isTimestamp {
			timestampFields = append(timestampFields, p.Name)
		}
	}

	if len(timestampFields) > 0 {
		if err := s.w.Key(s.labels.TimestampFields); err != nil {
			return nil, err
		}
		if err := s.w.Strings(timestampFields); err != nil {
			return nil, err
		}
	}

	children := s.children(n)
	if len(children) > 0 {
		if err := s.w.Key(s.labels.SubNodes); err != nil {
			return nil, err
		}
		if err := s.w.BeginObject(); err != nil {
			return nil, err
		}
	}

	s.report.NodesVisited++
	s.log.WithFields(logrus.Fields{
		"path":     displayPath(path),
		"children": len(children),
	}).Debug("serialized node")
	if s.opts.ProgressHandler != nil {
		s.opts.ProgressHandler(Progress{
			Path:         path,
			NodesVisited: s.report.NodesVisited,
			BinaryBytes:  s.report.BinaryBytes,
			StartTime:    s.report.StartTime,
		})
	}
	return children, nil
}

func (s *serializer) children(n node.Node) []node.Node {
	all := n.Children()
	if len(s.opts.ExcludedChildren) == 0 {
		return all
	}
	kept := make([]node.Node, 0, len(all))
	for _, c := range all {
		if !s.opts.ExcludedChildren[c.Name()] {
			kept = append(kept, c)
		}
	}
	return kept
}

// writeProperty writes one property and reports whether it was a timestamp.
func (s *serializer) writeProperty(p node.Property, path string) (bool, error) {
	s.report.PropertiesWritten++

	switch v := p.Value.(type) {
	case node.Binary:
		return false, s.writeBinary(p.Name, v, path)
	case node.StringList:
		if err := s.w.Key(p.Name); err != nil {
			return false, err
		}
		return false, s.w.Strings(v)
	case node.Timestamp:
		if err := s.w.Key(p.Name); err != nil {
			return false, err
		}
		return true, s.w.Int64(v.UnixMilli())
	case node.Scalar:
		if err := s.w.Key(p.Name); err != nil {
			return false, err
		}
		return false, s.w.Value(v.V)
	default:
		if err := s.w.Key(p.Name); err != nil {
			return false, err
		}
		return false, s.w.Value(v)
	}
}

// writeBinary replaces the property with the encodedDataFieldName and
// encodedData members and streams the payload into the latter.
func (s *serializer) writeBinary(name string, v node.Binary, path string) error {
	if err := s.w.Key(s.labels.EncodedDataFieldName); err != nil {
		return err
	}
	if err := s.w.String(name); err != nil {
		return err
	}
	if err := s.w.Key(s.labels.EncodedData); err != nil {
		return err
	}

	s.report.BinaryProperties++
	n, err := streamPayload(s.w, v.R, s.opts.ChunkSize)
	s.report.BinaryBytes += n
	if err == nil {
		return nil
	}
	return s.embedReadError(err, name, path)
}

// embedReadError records a binary read failure as an error member of the
// current object. Any other error is returned.
func (s *serializer) embedReadError(err error, property, path string) error {
	var readErr *uerrors.BinaryReadError
	if !errors.As(err, &readErr) {
		return err
	}
	readErr.Property = property

	s.log.WithFields(logrus.Fields{
		"path":     displayPath(path),
		"property": property,
	}).WithError(readErr.Err).Warn("binary read failed, payload truncated")
	s.report.Errors = append(s.report.Errors, readErr)

	if err := s.w.Key(s.labels.Error); err != nil {
		return err
	}
	return s.w.String(readErrorMessage(readErr.Err))
}

// streamPayload writes r as a base64 string value at the current position.
// The string is always closed, even when the source fails, so the document
// stays well-formed and holds the encoding of the bytes read before the
// failure.
func streamPayload(w *jsonstream.Writer, r io.Reader, chunkSize int) (int64, error) {
	s, err := w.OpenString()
	if err != nil {
		return 0, err
	}
	var n int64
	var encErr error
	if r != nil {
		n, encErr = EncodeChunks(r, s, chunkSize)
	}
	if uerrors.IsStructuralWrite(encErr) {
		return n, encErr
	}
	if err := s.Close(); err != nil {
		return n, err
	}
	return n, encErr
}

func readErrorMessage(cause error) string {
	return "I/O error while getting attachment: " + cause.Error()
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func displayPath(path string) string {
	if path == "" {
		return "."
	}
	return strings.TrimPrefix(path, "/")
}
