/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package export

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultChunkSize is the number of bytes read and encoded per chunk. It is a multiple of 3.
const DefaultChunkSize = 1440

// DefaultNamespace prefixes every reserved key of the export format.
const DefaultNamespace = "ugcExport:"

// Options configures an export
type Options struct {
	ChunkSize        int             // Bytes per base64 chunk, multiple of 3 (default: 1440)
	MaxDepth         int             // Maximum subNodes nesting, 0 for unbounded (default: 0)
	Namespace        string          // Reserved key prefix (default: "ugcExport:")
	ExcludedChildren map[string]bool // Child names left out of subNodes
	Logger           *logrus.Entry   // Logger (default: standard logger)
	ProgressHandler  func(Progress)  // Optional callback after each node
}

// Option is a functional option for configuring an export
type Option func(*Options)

// DefaultOptions returns default export options
func DefaultOptions() Options {
	return Options{
		ChunkSize: DefaultChunkSize,
		Namespace: DefaultNamespace,
		Logger:    logrus.NewEntry(logrus.StandardLogger()),
	}
}

// BuildOptions applies opts to DefaultOptions. A nil Logger falls back to
// the standard logger.
func BuildOptions(opts ...Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return options
}

// WithChunkSize sets the number of bytes encoded per chunk
func WithChunkSize(size int) Option {
	return func(opts *Options) {
		opts.ChunkSize = size
	}
}

// WithMaxDepth bounds how deeply subNodes may nest
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

// WithNamespace sets the prefix of reserved keys
func WithNamespace(ns string) Option {
	return func(opts *Options) {
		opts.Namespace = ns
	}
}

// WithExcludedChildren leaves the named children out of subNodes at every level
func WithExcludedChildren(names ...string) Option {
	return func(opts *Options) {
		if opts.ExcludedChildren == nil {
			opts.ExcludedChildren = make(map[string]bool, len(names))
		}
		for _, name := range names {
			opts.ExcludedChildren[name] = true
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(Progress)) Option {
	return func(opts *Options) {
		opts.ProgressHandler = handler
	}
}

// Progress tracks export progress
type Progress struct {
	Path         string    // Slash-separated path of the node just finished, relative to the root
	NodesVisited int       // Nodes serialized so far
	BinaryBytes  int64     // Binary bytes encoded so far
	StartTime    time.Time // When the export started
}

// Report summarizes a finished export.
//
// Errors holds content-level failures that were embedded in the document
// as error fields. A nil error return with a non-empty Errors is a partial
// export.
type Report struct {
	ID                string
	NodesVisited      int
	PropertiesWritten int
	BinaryProperties  int
	BinaryBytes       int64
	Errors            []error
	StartTime         time.Time
	Duration          time.Duration
}

func newReport() *Report {
	return &Report{StartTime: time.Now()}
}

func (r *Report) finish() *Report {
	r.Duration = time.Since(r.StartTime)
	return r
}

// Partial reports whether any content error was embedded in the output.
func (r *Report) Partial() bool {
	return len(r.Errors) > 0
}

// Merge adds the counters and errors of other to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.NodesVisited += other.NodesVisited
	r.PropertiesWritten += other.PropertiesWritten
	r.BinaryProperties += other.BinaryProperties
	r.BinaryBytes += other.BinaryBytes
	r.Errors = append(r.Errors, other.Errors...)
}
