/*
Package jsonstream writes a single JSON document incrementally.

The Writer tracks nesting and key/value placement so that well-formed
calls always produce well-formed JSON. Large string values, such as a
base64 payload streamed from a blob, are written through an explicit
append operation instead of being assembled in memory:

	w := jsonstream.New(out)
	w.BeginObject()
	w.Key("data")
	s, _ := w.OpenString()
	io.Copy(s, encoded) // only JSON-safe text is accepted
	s.Close()
	w.EndObject()

While a string is open every structural call fails with ErrStringOpen,
so raw text can never land outside the value it belongs to.
*/
package jsonstream
