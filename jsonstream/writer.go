/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package jsonstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	uerrors "github.com/suparena/ugcexport/errors"
)

var (
	// ErrMisuse is returned when calls would produce malformed JSON.
	ErrMisuse = errors.New("jsonstream: misuse")

	// ErrStringOpen is returned for structural calls made while a string value is being appended to.
	ErrStringOpen = errors.New("jsonstream: string value is open")

	// ErrUnsafeRaw is returned when appended text would need JSON escaping.
	ErrUnsafeRaw = errors.New("jsonstream: raw text needs escaping")
)

type scope int

const (
	scopeTop scope = iota
	scopeObject
	scopeArray
)

type frame struct {
	scope     scope
	count     int
	wantValue bool
}

// Writer emits one JSON document to an io.Writer, tracking nesting and
// key/value placement. Writes go straight to the underlying writer; wrap it
// in a bufio.Writer when buffering is wanted.
//
// Every error returned is a *errors.StructuralWriteError. The first error
// from the underlying writer is sticky.
type Writer struct {
	out     io.Writer
	stack   []frame
	open    *StringAppender
	err     error
	scratch bytes.Buffer
	enc     *json.Encoder
	written int64
}

// New returns a Writer positioned before the top-level value.
func New(out io.Writer) *Writer {
	w := &Writer{
		out:   out,
		stack: []frame{{scope: scopeTop}},
	}
	w.enc = json.NewEncoder(&w.scratch)
	w.enc.SetEscapeHTML(false)
	return w
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 {
	return w.written
}

// Depth returns the number of currently open objects and arrays.
func (w *Writer) Depth() int {
	return len(w.stack) - 1
}

// InString reports whether a string value is open for appending.
func (w *Writer) InString() bool {
	return w.open != nil
}

// Err returns the sticky error of the underlying writer, if any.
func (w *Writer) Err() error {
	return w.err
}

// BeginObject opens an object at the current value position.
func (w *Writer) BeginObject() error {
	if err := w.beforeValue("beginObject"); err != nil {
		return err
	}
	if err := w.write("beginObject", []byte{'{'}); err != nil {
		return err
	}
	w.stack = append(w.stack, frame{scope: scopeObject})
	return nil
}

// EndObject closes the innermost object.
func (w *Writer) EndObject() error {
	return w.end("endObject", scopeObject, '}')
}

// BeginArray opens an array at the current value position.
func (w *Writer) BeginArray() error {
	if err := w.beforeValue("beginArray"); err != nil {
		return err
	}
	if err := w.write("beginArray", []byte{'['}); err != nil {
		return err
	}
	w.stack = append(w.stack, frame{scope: scopeArray})
	return nil
}

// EndArray closes the innermost array.
func (w *Writer) EndArray() error {
	return w.end("endArray", scopeArray, ']')
}

// Key writes an object member name. The next call must write its value.
func (w *Writer) Key(name string) error {
	if err := w.usable("key"); err != nil {
		return err
	}
	f := w.top()
	if f.scope != scopeObject {
		return misuse("key", "key %q outside of an object", name)
	}
	if f.wantValue {
		return misuse("key", "key %q written while a value is pending", name)
	}
	enc, err := w.encode(name)
	if err != nil {
		return uerrors.NewStructuralWriteError("key", err)
	}
	if f.count > 0 {
		enc = append([]byte{','}, enc...)
	}
	enc = append(enc, ':')
	if err := w.write("key", enc); err != nil {
		return err
	}
	f.count++
	f.wantValue = true
	return nil
}

// Value writes v using its encoding/json representation. Values that
// encoding/json cannot represent are rejected.
func (w *Writer) Value(v any) error {
	if err := w.usable("value"); err != nil {
		return err
	}
	enc, err := w.encode(v)
	if err != nil {
		return uerrors.NewStructuralWriteError("value", err)
	}
	return w.raw("value", enc)
}

// String writes a string value.
func (w *Writer) String(s string) error {
	return w.Value(s)
}

// Int64 writes an integer value.
func (w *Writer) Int64(n int64) error {
	if err := w.usable("value"); err != nil {
		return err
	}
	return w.raw("value", strconv.AppendInt(nil, n, 10))
}

// Strings writes an array of strings in order. A nil slice is written as [].
func (w *Writer) Strings(list []string) error {
	if err := w.BeginArray(); err != nil {
		return err
	}
	for _, s := range list {
		if err := w.String(s); err != nil {
			return err
		}
	}
	return w.EndArray()
}

// OpenString starts a string value at the current position and returns an
// appender for its contents. No structural call is accepted until the
// appender is closed.
func (w *Writer) OpenString() (*StringAppender, error) {
	if err := w.beforeValue("openString"); err != nil {
		return nil, err
	}
	if err := w.write("openString", []byte{'"'}); err != nil {
		return nil, err
	}
	w.open = &StringAppender{w: w}
	return w.open, nil
}

// Finish checks that the document is complete.
func (w *Writer) Finish() error {
	if err := w.usable("finish"); err != nil {
		return err
	}
	if w.Depth() > 0 {
		return misuse("finish", "%d unclosed object(s) or array(s)", w.Depth())
	}
	if w.top().count == 0 {
		return misuse("finish", "no value written")
	}
	return nil
}

// StringAppender appends verbatim text into an open JSON string value.
// It accepts only text that needs no JSON escaping, such as base64.
type StringAppender struct {
	w      *Writer
	n      int64
	closed bool
}

// Write appends p to the string value.
func (s *StringAppender) Write(p []byte) (int, error) {
	if s.closed {
		return 0, misuse("appendString", "string already closed")
	}
	if s.w.err != nil {
		return 0, s.w.err
	}
	for i, b := range p {
		if b < 0x20 || b == '"' || b == '\\' {
			return 0, uerrors.NewStructuralWriteError("appendString",
				fmt.Errorf("%w: byte 0x%02x at offset %d", ErrUnsafeRaw, b, i))
		}
	}
	if err := s.w.write("appendString", p); err != nil {
		return 0, err
	}
	s.n += int64(len(p))
	return len(p), nil
}

// WriteString appends str to the string value.
func (s *StringAppender) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Len returns the number of bytes appended so far.
func (s *StringAppender) Len() int64 {
	return s.n
}

// Close ends the string value. Closing twice is a no-op.
func (s *StringAppender) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.open = nil
	return s.w.write("closeString", []byte{'"'})
}

func (w *Writer) top() *frame {
	return &w.stack[len(w.stack)-1]
}

func (w *Writer) usable(op string) error {
	if w.err != nil {
		return w.err
	}
	if w.open != nil {
		return uerrors.NewStructuralWriteError(op, ErrStringOpen)
	}
	return nil
}

// beforeValue checks placement and writes a separating comma if needed.
func (w *Writer) beforeValue(op string) error {
	if err := w.usable(op); err != nil {
		return err
	}
	f := w.top()
	switch f.scope {
	case scopeObject:
		if !f.wantValue {
			return misuse(op, "value inside an object without a key")
		}
		f.wantValue = false
	case scopeArray:
		if f.count > 0 {
			if err := w.write(op, []byte{','}); err != nil {
				return err
			}
		}
		f.count++
	case scopeTop:
		if f.count > 0 {
			return misuse(op, "more than one top-level value")
		}
		f.count++
	}
	return nil
}

func (w *Writer) raw(op string, enc []byte) error {
	if err := w.beforeValue(op); err != nil {
		return err
	}
	return w.write(op, enc)
}

func (w *Writer) end(op string, want scope, c byte) error {
	if err := w.usable(op); err != nil {
		return err
	}
	f := w.top()
	if f.scope != want {
		return misuse(op, "no matching open scope")
	}
	if f.wantValue {
		return misuse(op, "object closed while a value is pending")
	}
	if err := w.write(op, []byte{c}); err != nil {
		return err
	}
	w.stack = w.stack[:len(w.stack)-1]
	return nil
}

func (w *Writer) encode(v any) ([]byte, error) {
	w.scratch.Reset()
	if err := w.enc.Encode(v); err != nil {
		return nil, err
	}
	// Encode terminates each value with a newline.
	return bytes.Clone(bytes.TrimSuffix(w.scratch.Bytes(), []byte{'\n'})), nil
}

func (w *Writer) write(op string, p []byte) error {
	if w.err != nil {
		return w.err
	}
	n, err := w.out.Write(p)
	w.written += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = uerrors.NewStructuralWriteError(op, err)
		return w.err
	}
	return nil
}

func misuse(op, format string, args ...any) error {
	return uerrors.NewStructuralWriteError(op, fmt.Errorf("%w: "+format, append([]any{ErrMisuse}, args...)...))
}
