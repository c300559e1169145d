/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ugcexport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/export"
	"github.com/suparena/ugcexport/jsonstream"
	"github.com/suparena/ugcexport/node"
	"github.com/suparena/ugcexport/registry"
	"github.com/suparena/ugcexport/source"
)

const (
	// ResourceTypeProperty names the root property looked up in the content type registry.
	ResourceTypeProperty = "sling:resourceType"

	// AttachmentsChild is the root child whose children are exported as attachments.
	AttachmentsChild = "attachments"
)

// Exporter writes export records for nodes loaded from named sources.
// It is safe for concurrent use; each export owns its own writer.
type Exporter struct {
	mu      sync.RWMutex
	sources map[string]source.Source
	opts    []export.Option
	options export.Options
	metrics *Metrics
}

// NewExporter creates an Exporter that serializes with opts.
func NewExporter(opts ...export.Option) *Exporter {
	return &Exporter{
		sources: make(map[string]source.Source),
		opts:    opts,
		options: export.BuildOptions(opts...),
	}
}

// WithMetrics records every export in m.
func (e *Exporter) WithMetrics(m *Metrics) *Exporter {
	e.metrics = m
	return e
}

// RegisterSource stores src under name.
func (e *Exporter) RegisterSource(name string, src source.Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.sources[name]; exists {
		return fmt.Errorf("source with name %q already registered", name)
	}
	e.sources[name] = src
	return nil
}

// GetSource retrieves a source by name
func (e *Exporter) GetSource(name string) (source.Source, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	src, exists := e.sources[name]
	if !exists {
		return nil, errors.NewNotFoundError("Source", name)
	}
	return src, nil
}

// RemoveSource deletes a source by name
func (e *Exporter) RemoveSource(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.sources[name]; !exists {
		return errors.NewNotFoundError("Source", name)
	}
	delete(e.sources, name)
	return nil
}

// ListSources returns all registered source names in sorted order
func (e *Exporter) ListSources() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.sources))
	for name := range e.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export loads the node at path from the named source and writes its
// export record to w:
//
//	{"ugcExport:contentType": "forum", "content": {...}, "ugcExport:attachments": [{...}]}
//
// The content type is present when the root's resource type is registered.
// The attachments array holds the children of the root's attachments child,
// which is left out of content, and is absent when there is no such child.
//
// The returned error is non-nil only when nothing usable was written: the
// source failed, or w failed mid-document. Content errors are embedded in
// the record and listed in the report.
func (e *Exporter) Export(ctx context.Context, w io.Writer, sourceName, path string) (*export.Report, error) {
	return e.run(ctx, "record", w, sourceName, path, e.writeRecord)
}

// ExportAttachment loads the attachment node at path from the named source
// and writes it to w as a single object.
func (e *Exporter) ExportAttachment(ctx context.Context, w io.Writer, sourceName, path string) (*export.Report, error) {
	return e.run(ctx, "attachment", w, sourceName, path, func(jw *jsonstream.Writer, n node.Node, opts []export.Option) (*export.Report, error) {
		if err := jw.BeginObject(); err != nil {
			return nil, err
		}
		report, err := export.ExtractAttachment(jw, n, opts...)
		if err != nil {
			return report, err
		}
		return report, jw.EndObject()
	})
}

type writeFunc func(jw *jsonstream.Writer, n node.Node, opts []export.Option) (*export.Report, error)

// run loads the node, writes it with write and flushes. Every run gets an
// id that tags its log entries and report.
func (e *Exporter) run(ctx context.Context, kind string, w io.Writer, sourceName, path string, write writeFunc) (*export.Report, error) {
	start := time.Now()
	id := uuid.NewString()
	log := e.options.Logger.WithFields(logrus.Fields{
		"exportId": id,
		"kind":     kind,
		"source":   sourceName,
		"path":     path,
	})

	report, err := e.loadAndWrite(ctx, w, sourceName, path, write, log)
	if report != nil {
		report.ID = id
		report.StartTime = start
		report.Duration = time.Since(start)
	}
	e.metrics.RecordExport(kind, report, err, time.Since(start))

	if err != nil {
		log.WithError(err).Error("export failed")
		return report, err
	}
	entry := log.WithFields(logrus.Fields{
		"nodes":       report.NodesVisited,
		"properties":  report.PropertiesWritten,
		"binaryBytes": report.BinaryBytes,
		"errors":      len(report.Errors),
		"duration":    report.Duration,
	})
	if report.Partial() {
		entry.Warn("export finished with embedded errors")
	} else {
		entry.Info("export finished")
	}
	return report, nil
}

func (e *Exporter) loadAndWrite(ctx context.Context, w io.Writer, sourceName, path string, write writeFunc, log *logrus.Entry) (*export.Report, error) {
	n, err := e.load(ctx, sourceName, path)
	if err != nil {
		return nil, err
	}

	opts := append(append([]export.Option{}, e.opts...), export.WithLogger(log))
	bw := bufio.NewWriter(w)
	jw := jsonstream.New(bw)
	report, err := write(jw, n, opts)
	if err != nil {
		return report, err
	}
	if err := jw.Finish(); err != nil {
		return report, err
	}
	if err := bw.Flush(); err != nil {
		return report, errors.NewStructuralWriteError("flush", err)
	}
	return report, nil
}

// writeRecord writes the top-level record object for root.
func (e *Exporter) writeRecord(jw *jsonstream.Writer, root node.Node, opts []export.Option) (*export.Report, error) {
	labels := export.LabelsFor(e.options.Namespace)
	report := &export.Report{}

	if err := jw.BeginObject(); err != nil {
		return report, err
	}
	if label, ok := contentType(root); ok {
		if err := jw.Key(labels.ContentType); err != nil {
			return report, err
		}
		if err := jw.String(label); err != nil {
			return report, err
		}
	}

	attachments, hasAttachments := node.Child(root, AttachmentsChild)
	content := root
	if hasAttachments {
		content = withoutChild{Node: root, name: AttachmentsChild}
	}

	if err := jw.Key(export.LabelContent); err != nil {
		return report, err
	}
	if err := jw.BeginObject(); err != nil {
		return report, err
	}
	sub, err := export.ExtractSubNode(jw, content, opts...)
	report.Merge(sub)
	if err != nil {
		return report, err
	}
	if err := jw.EndObject(); err != nil {
		return report, err
	}

	if hasAttachments {
		if err := jw.Key(labels.Attachments); err != nil {
			return report, err
		}
		if err := jw.BeginArray(); err != nil {
			return report, err
		}
		for _, att := range attachments.Children() {
			if err := jw.BeginObject(); err != nil {
				return report, err
			}
			r, err := export.ExtractAttachment(jw, att, opts...)
			report.Merge(r)
			if err != nil {
				return report, err
			}
			if err := jw.EndObject(); err != nil {
				return report, err
			}
		}
		if err := jw.EndArray(); err != nil {
			return report, err
		}
	}
	return report, jw.EndObject()
}

func (e *Exporter) load(ctx context.Context, sourceName, path string) (node.Node, error) {
	src, err := e.GetSource(sourceName)
	if err != nil {
		return nil, err
	}
	n, err := src.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q from source %q: %w", path, sourceName, err)
	}
	return n, nil
}

// contentType returns the registered label for the resource type of n.
func contentType(n node.Node) (string, bool) {
	v, ok := node.Find(n, ResourceTypeProperty)
	if !ok {
		return "", false
	}
	scalar, ok := v.(node.Scalar)
	if !ok {
		return "", false
	}
	resourceType, ok := scalar.V.(string)
	if !ok {
		return "", false
	}
	return registry.ContentType(resourceType)
}

// withoutChild hides one child of the wrapped node.
type withoutChild struct {
	node.Node
	name string
}

func (n withoutChild) Children() []node.Node {
	all := n.Node.Children()
	kept := make([]node.Node, 0, len(all))
	for _, c := range all {
		if c.Name() != n.name {
			kept = append(kept, c)
		}
	}
	return kept
}
