/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package export_test

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/suparena/ugcexport/export"
	"github.com/suparena/ugcexport/jsonstream"
	"github.com/suparena/ugcexport/node"
)

var errDiskGone = errors.New("device unplugged")

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// serialize runs ExtractSubNode inside a fresh top-level object.
func serialize(t *testing.T, n node.Node, opts ...export.Option) (string, *export.Report) {
	t.Helper()
	var buf bytes.Buffer
	w := jsonstream.New(&buf)
	require.NoError(t, w.BeginObject())
	report, err := export.ExtractSubNode(w, n, append([]export.Option{export.WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, w.EndObject())
	require.NoError(t, w.Finish())
	return buf.String(), report
}

// failAfterReader yields data and then fails with err.
type failAfterReader struct {
	data []byte
	err  error
}

func (r *failAfterReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

// stutterReader returns an empty read before every real one.
type stutterReader struct {
	r     io.Reader
	empty bool
}

func (s *stutterReader) Read(p []byte) (int, error) {
	s.empty = !s.empty
	if s.empty {
		return 0, nil
	}
	return s.r.Read(p)
}

// failingWriter accepts limit bytes and then fails.
type failingWriter struct {
	limit int
	n     int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n+len(p) > f.limit {
		return 0, errDiskGone
	}
	f.n += len(p)
	return len(p), nil
}

func randomBytes(seed int64, n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}
