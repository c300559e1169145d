/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package jsonstream_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/jsonstream"
)

// failingWriter accepts limit bytes and then fails.
type failingWriter struct {
	limit int
	n     int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n+len(p) > f.limit {
		return 0, io.ErrClosedPipe
	}
	f.n += len(p)
	return len(p), nil
}

func TestWriterStructure(t *testing.T) {
	t.Run("EmptyObject", func(t *testing.T) {
		var buf bytes.Buffer
		w := jsonstream.New(&buf)
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.EndObject())
		require.NoError(t, w.Finish())
		assert.Equal(t, "{}", buf.String())
	})

	t.Run("NestedMembers", func(t *testing.T) {
		var buf bytes.Buffer
		w := jsonstream.New(&buf)
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Key("a"))
		require.NoError(t, w.Value(1))
		require.NoError(t, w.Key("b"))
		require.NoError(t, w.Strings([]string{"x", "y"}))
		require.NoError(t, w.Key("c"))
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Key("d"))
		require.NoError(t, w.Int64(1425211200500))
		require.NoError(t, w.Key("e"))
		require.NoError(t, w.Value(nil))
		require.NoError(t, w.EndObject())
		require.NoError(t, w.Key("f"))
		require.NoError(t, w.Strings(nil))
		require.NoError(t, w.EndObject())
		require.NoError(t, w.Finish())

		assert.Equal(t, `{"a":1,"b":["x","y"],"c":{"d":1425211200500,"e":null},"f":[]}`, buf.String())
		assert.True(t, json.Valid(buf.Bytes()))
		assert.Equal(t, int64(buf.Len()), w.Written())
	})

	t.Run("NoHTMLEscaping", func(t *testing.T) {
		var buf bytes.Buffer
		w := jsonstream.New(&buf)
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Key("<k>"))
		require.NoError(t, w.String("a&b \"q\""))
		require.NoError(t, w.EndObject())
		assert.Equal(t, `{"<k>":"a&b \"q\""}`, buf.String())
	})
}

func TestWriterMisuse(t *testing.T) {
	tests := []struct {
		name string
		run  func(w *jsonstream.Writer) error
	}{
		{"ValueWithoutKey", func(w *jsonstream.Writer) error {
			w.BeginObject()
			return w.Value("x")
		}},
		{"KeyInArray", func(w *jsonstream.Writer) error {
			w.BeginArray()
			return w.Key("x")
		}},
		{"TwoKeysInARow", func(w *jsonstream.Writer) error {
			w.BeginObject()
			w.Key("a")
			return w.Key("b")
		}},
		{"EndObjectWithPendingValue", func(w *jsonstream.Writer) error {
			w.BeginObject()
			w.Key("a")
			return w.EndObject()
		}},
		{"MismatchedEnd", func(w *jsonstream.Writer) error {
			w.BeginObject()
			return w.EndArray()
		}},
		{"EndAtTopLevel", func(w *jsonstream.Writer) error {
			return w.EndObject()
		}},
		{"TwoTopLevelValues", func(w *jsonstream.Writer) error {
			w.Value(1)
			return w.Value(2)
		}},
		{"FinishUnclosed", func(w *jsonstream.Writer) error {
			w.BeginObject()
			return w.Finish()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := jsonstream.New(io.Discard)
			err := tt.run(w)
			require.Error(t, err)
			assert.ErrorIs(t, err, jsonstream.ErrMisuse)
			assert.True(t, uerrors.IsStructuralWrite(err))
		})
	}
}

func TestWriterRejectsUnsupportedValue(t *testing.T) {
	w := jsonstream.New(io.Discard)
	require.NoError(t, w.BeginObject())
	require.NoError(t, w.Key("ch"))

	err := w.Value(make(chan int))
	require.Error(t, err)
	assert.True(t, uerrors.IsStructuralWrite(err))

	// the failed value leaves the position unchanged
	require.NoError(t, w.String("fallback"))
	require.NoError(t, w.EndObject())
}

func TestOpenString(t *testing.T) {
	t.Run("AppendsIntoValue", func(t *testing.T) {
		var buf bytes.Buffer
		w := jsonstream.New(&buf)
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Key("before"))
		require.NoError(t, w.Value(true))
		require.NoError(t, w.Key("data"))

		s, err := w.OpenString()
		require.NoError(t, err)
		assert.True(t, w.InString())
		_, err = s.WriteString("QUJD")
		require.NoError(t, err)
		_, err = s.Write([]byte("REVG"))
		require.NoError(t, err)
		assert.Equal(t, int64(8), s.Len())
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		assert.False(t, w.InString())

		require.NoError(t, w.Key("after"))
		require.NoError(t, w.Value(2))
		require.NoError(t, w.EndObject())

		assert.Equal(t, `{"before":true,"data":"QUJDREVG","after":2}`, buf.String())
	})

	t.Run("EmptyString", func(t *testing.T) {
		var buf bytes.Buffer
		w := jsonstream.New(&buf)
		require.NoError(t, w.BeginArray())
		s, err := w.OpenString()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		s, err = w.OpenString()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		require.NoError(t, w.EndArray())
		assert.Equal(t, `["",""]`, buf.String())
	})

	t.Run("StructuralCallsBlockedWhileOpen", func(t *testing.T) {
		w := jsonstream.New(io.Discard)
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Key("data"))
		s, err := w.OpenString()
		require.NoError(t, err)

		assert.ErrorIs(t, w.Key("error"), jsonstream.ErrStringOpen)
		assert.ErrorIs(t, w.EndObject(), jsonstream.ErrStringOpen)
		_, err = w.OpenString()
		assert.ErrorIs(t, err, jsonstream.ErrStringOpen)

		require.NoError(t, s.Close())
		require.NoError(t, w.Key("error"))
		require.NoError(t, w.String("boom"))
		require.NoError(t, w.EndObject())
	})

	t.Run("RejectsTextNeedingEscapes", func(t *testing.T) {
		for _, bad := range []string{`a"b`, `a\b`, "a\nb"} {
			var buf bytes.Buffer
			w := jsonstream.New(&buf)
			require.NoError(t, w.BeginArray())
			s, err := w.OpenString()
			require.NoError(t, err)

			_, err = s.WriteString(bad)
			assert.ErrorIs(t, err, jsonstream.ErrUnsafeRaw, bad)
			require.NoError(t, s.Close())
			require.NoError(t, w.EndArray())
			assert.Equal(t, `[""]`, buf.String())
		}
	})

	t.Run("WriteAfterClose", func(t *testing.T) {
		w := jsonstream.New(io.Discard)
		require.NoError(t, w.BeginArray())
		s, err := w.OpenString()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		_, err = s.WriteString("x")
		assert.ErrorIs(t, err, jsonstream.ErrMisuse)
	})
}

func TestWriterSinkFailureIsSticky(t *testing.T) {
	fw := &failingWriter{limit: 6}
	w := jsonstream.New(fw)
	require.NoError(t, w.BeginObject())
	require.NoError(t, w.Key("ab"))

	err := w.String("too long for the sink")
	require.Error(t, err)
	assert.True(t, uerrors.IsStructuralWrite(err))
	assert.True(t, errors.Is(err, io.ErrClosedPipe))

	// every later call reports the same failure
	assert.Equal(t, err, w.EndObject())
	assert.Equal(t, err, w.Err())
}
