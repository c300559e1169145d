/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package export_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	uerrors "github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/export"
	"github.com/suparena/ugcexport/jsonstream"
	"github.com/suparena/ugcexport/node"
)

var created = time.Date(2015, 3, 1, 12, 0, 0, 500*int(time.Millisecond), time.UTC)

func TestExtractSubNodeEmpty(t *testing.T) {
	out, report := serialize(t, node.NewMem("empty"))
	assert.Equal(t, "{}", out)
	assert.Equal(t, 1, report.NodesVisited)
	assert.False(t, report.Partial())
}

func TestExtractSubNodeProperties(t *testing.T) {
	t.Run("ExactLayout", func(t *testing.T) {
		root := node.NewMem("post").
			SetScalar("title", "Hello").
			SetStrings("tags", "a", "b").
			SetTime("created", created)
		root.NewChild("child1").SetScalar("count", 3)

		out, report := serialize(t, root)
		assert.Equal(t,
			`{"title":"Hello","tags":["a","b"],"created":1425211200500,`+
				`"ugcExport:timestampFields":["created"],`+
				`"ugcExport:subNodes":{"child1":{"count":3}}}`,
			out)
		assert.Equal(t, 2, report.NodesVisited)
		assert.Equal(t, 4, report.PropertiesWritten)
	})

	t.Run("StringListKeepsOrder", func(t *testing.T) {
		out, _ := serialize(t, node.NewMem("n").SetStrings("list", "b", "a", "c"))
		assert.Equal(t, `["b","a","c"]`, gjson.Get(out, "list").Raw)
	})

	t.Run("EmptyStringList", func(t *testing.T) {
		out, _ := serialize(t, node.NewMem("n").SetStrings("list"))
		assert.Equal(t, `{"list":[]}`, out)
	})

	t.Run("Scalars", func(t *testing.T) {
		n := node.NewMem("n").
			SetScalar("s", "text").
			SetScalar("i", int64(-42)).
			SetScalar("f", 1.5).
			SetScalar("b", false).
			SetScalar("nil", nil).
			SetScalar("num", json.Number("12345678901234567890"))

		out, _ := serialize(t, n)
		assert.Equal(t, `{"s":"text","i":-42,"f":1.5,"b":false,"nil":null,"num":12345678901234567890}`, out)
	})

	t.Run("EmbeddedValuePassesThrough", func(t *testing.T) {
		type wrapped struct{ node.Scalar }
		n := node.NewMem("n").Set("x", wrapped{node.Scalar{V: 1}})

		out, report := serialize(t, n)
		assert.Equal(t, `{"x":{"V":1}}`, out)
		assert.Equal(t, 1, report.PropertiesWritten)
	})

	t.Run("TimestampsCollectedInOrder", func(t *testing.T) {
		n := node.NewMem("n").
			SetTime("modified", created.Add(time.Hour)).
			SetScalar("title", "x").
			SetTime("created", created)

		out, _ := serialize(t, n)
		assert.Equal(t, created.Add(time.Hour).UnixMilli(), gjson.Get(out, "modified").Int())
		assert.Equal(t, int64(1425211200500), gjson.Get(out, "created").Int())
		assert.Equal(t, `["modified","created"]`, gjson.Get(out, "ugcExport:timestampFields").Raw)
	})

	t.Run("NoTimestampFieldsWithoutTimestamps", func(t *testing.T) {
		out, _ := serialize(t, node.NewMem("n").SetScalar("a", 1))
		assert.False(t, gjson.Get(out, "ugcExport:timestampFields").Exists())
		assert.False(t, gjson.Get(out, "ugcExport:subNodes").Exists())
	})

	t.Run("CustomNamespace", func(t *testing.T) {
		n := node.NewMem("n").SetTime("created", created)
		n.NewChild("c")

		out, _ := serialize(t, n, export.WithNamespace("x:"))
		assert.Equal(t, `{"created":1425211200500,"x:timestampFields":["created"],"x:subNodes":{"c":{}}}`, out)
	})
}

func TestExtractSubNodeChildren(t *testing.T) {
	t.Run("SiblingsInSourceOrder", func(t *testing.T) {
		root := node.NewMem("root")
		root.NewChild("zeta").SetScalar("v", 1)
		a := root.NewChild("alpha")
		a.NewChild("inner").SetScalar("v", 2)
		root.NewChild("mid")

		out, report := serialize(t, root)
		assert.Equal(t,
			`{"ugcExport:subNodes":{"zeta":{"v":1},"alpha":{"ugcExport:subNodes":{"inner":{"v":2}}},"mid":{}}}`,
			out)
		assert.Equal(t, 5, report.NodesVisited)
	})

	t.Run("DeepNesting", func(t *testing.T) {
		const depth = 200
		root := node.NewMem("root")
		cur := root
		path := make([]string, 0, depth*2)
		for i := 0; i < depth; i++ {
			cur = cur.NewChild("child1")
			cur.SetScalar("level", i+1)
			path = append(path, "ugcExport:subNodes", "child1")
		}

		out, report := serialize(t, root)
		require.True(t, gjson.Valid(out))
		assert.Equal(t, int64(depth), gjson.Get(out, strings.Join(path, ".")+".level").Int())
		assert.Equal(t, int64(depth/2), gjson.Get(out, strings.Join(path[:depth], ".")+".level").Int())
		assert.Equal(t, depth+1, report.NodesVisited)
	})

	t.Run("MaxDepth", func(t *testing.T) {
		root := node.NewMem("root")
		root.NewChild("a").NewChild("b").NewChild("c")

		_, err := export.ExtractSubNode(jsonstreamInObject(t, io.Discard), root,
			export.WithMaxDepth(2), export.WithLogger(quietLogger()))
		require.Error(t, err)
		assert.ErrorIs(t, err, uerrors.ErrMaxDepthExceeded)
		assert.Contains(t, err.Error(), `"a/b/c"`)

		out, _ := serialize(t, root, export.WithMaxDepth(3))
		assert.True(t, gjson.Get(out, "ugcExport:subNodes.a.ugcExport:subNodes.b.ugcExport:subNodes.c").Exists())
	})

	t.Run("ExcludedChildren", func(t *testing.T) {
		root := node.NewMem("root")
		root.NewChild("attachments").NewChild("file")
		root.NewChild("reply").NewChild("attachments")

		out, _ := serialize(t, root, export.WithExcludedChildren("attachments"))
		assert.Equal(t, `{"ugcExport:subNodes":{"reply":{}}}`, out)

		out, _ = serialize(t, node.NewMem("root").AddChild(node.NewMem("attachments")),
			export.WithExcludedChildren("attachments"))
		assert.Equal(t, "{}", out)
	})

	t.Run("ProgressReported", func(t *testing.T) {
		root := node.NewMem("root")
		root.NewChild("a").NewChild("b")
		root.NewChild("c")

		var paths []string
		serialize(t, root, export.WithProgressHandler(func(p export.Progress) {
			paths = append(paths, p.Path)
		}))
		assert.Equal(t, []string{"", "a", "a/b", "c"}, paths)
	})
}

func TestExtractSubNodeBinary(t *testing.T) {
	t.Run("ReplacesPropertyKey", func(t *testing.T) {
		n := node.NewMem("n").SetBinary("file", strings.NewReader("hello"))

		out, report := serialize(t, n)
		assert.Equal(t, `{"ugcExport:encodedDataFieldName":"file","ugcExport:encodedData":"aGVsbG8="}`, out)
		assert.Equal(t, 1, report.BinaryProperties)
		assert.Equal(t, int64(5), report.BinaryBytes)
	})

	t.Run("LargePayloadAcrossChunks", func(t *testing.T) {
		data := randomBytes(11, 10*export.DefaultChunkSize+17)
		n := node.NewMem("n").
			SetScalar("before", 1).
			SetBinary("file", &stutterReader{r: bytes.NewReader(data)}).
			SetScalar("after", 2)

		out, _ := serialize(t, n)
		require.True(t, gjson.Valid(out))
		assert.Equal(t, base64.StdEncoding.EncodeToString(data), gjson.Get(out, "ugcExport:encodedData").String())
		assert.Equal(t, int64(2), gjson.Get(out, "after").Int())
	})

	t.Run("EmptyAndNilSources", func(t *testing.T) {
		out, _ := serialize(t, node.NewMem("n").SetBinary("empty", strings.NewReader("")))
		assert.Equal(t, `{"ugcExport:encodedDataFieldName":"empty","ugcExport:encodedData":""}`, out)

		out, _ = serialize(t, node.NewMem("n").Set("none", node.Binary{}))
		assert.Equal(t, `{"ugcExport:encodedDataFieldName":"none","ugcExport:encodedData":""}`, out)
	})

	t.Run("ReadFailureAfterChunks", func(t *testing.T) {
		data := randomBytes(5, 2*export.DefaultChunkSize+10)
		root := node.NewMem("root")
		broken := root.NewChild("broken").
			SetBinary("file", &failAfterReader{data: data, err: io.ErrUnexpectedEOF}).
			SetScalar("after", "kept")
		broken.NewChild("grandchild").SetScalar("x", 1)
		root.NewChild("sibling").SetScalar("ok", true)

		out, report := serialize(t, root)
		require.True(t, gjson.Valid(out), out)

		b := gjson.Get(out, "ugcExport:subNodes.broken")
		assert.Equal(t, base64.StdEncoding.EncodeToString(data), b.Get("ugcExport:encodedData").String())
		assert.Equal(t, "I/O error while getting attachment: unexpected EOF", b.Get("ugcExport:error").String())
		assert.Equal(t, "kept", b.Get("after").String())
		assert.Equal(t, int64(1), b.Get("ugcExport:subNodes.grandchild.x").Int())
		assert.True(t, gjson.Get(out, "ugcExport:subNodes.sibling.ok").Bool())

		require.Len(t, report.Errors, 1)
		assert.True(t, report.Partial())
		assert.True(t, uerrors.IsBinaryRead(report.Errors[0]))
		var readErr *uerrors.BinaryReadError
		require.ErrorAs(t, report.Errors[0], &readErr)
		assert.Equal(t, "file", readErr.Property)
	})

	t.Run("ReadFailureOnFirstRead", func(t *testing.T) {
		n := node.NewMem("n").SetBinary("file", &failAfterReader{err: io.ErrClosedPipe})

		out, report := serialize(t, n)
		assert.Equal(t,
			`{"ugcExport:encodedDataFieldName":"file","ugcExport:encodedData":"",`+
				`"ugcExport:error":"I/O error while getting attachment: io: read/write on closed pipe"}`,
			out)
		assert.Len(t, report.Errors, 1)
	})
}

func TestExtractSubNodeIdempotent(t *testing.T) {
	build := func() node.Node {
		root := node.NewMem("root").
			SetScalar("title", "t").
			SetTime("created", created).
			SetBinary("file", bytes.NewReader(randomBytes(1, 5000)))
		root.NewChild("a").SetStrings("tags", "x", "y")
		root.NewChild("b").NewChild("c").SetScalar("n", 1.25)
		return root
	}

	first, _ := serialize(t, build())
	second, _ := serialize(t, build())
	assert.Equal(t, first, second)
}

func TestExtractSubNodeStructuralFailure(t *testing.T) {
	t.Run("SinkFailureAbortsWalk", func(t *testing.T) {
		root := node.NewMem("root").SetScalar("title", strings.Repeat("x", 64))
		for _, name := range []string{"a", "b", "c"} {
			root.NewChild(name).SetScalar("v", 1)
		}

		sink := &failingWriter{limit: 40}
		w := jsonstream.New(sink)
		require.NoError(t, w.BeginObject())

		var visited int
		_, err := export.ExtractSubNode(w, root, export.WithLogger(quietLogger()),
			export.WithProgressHandler(func(export.Progress) { visited++ }))
		require.Error(t, err)
		assert.True(t, uerrors.IsStructuralWrite(err))
		assert.ErrorIs(t, err, errDiskGone)
		assert.Equal(t, 0, visited)
	})

	t.Run("SinkFailureDuringPayload", func(t *testing.T) {
		n := node.NewMem("n").SetBinary("file", bytes.NewReader(randomBytes(2, 4*export.DefaultChunkSize)))
		w := jsonstream.New(&failingWriter{limit: 3000})
		require.NoError(t, w.BeginObject())

		report, err := export.ExtractSubNode(w, n, export.WithLogger(quietLogger()))
		require.Error(t, err)
		assert.True(t, uerrors.IsStructuralWrite(err))
		assert.Empty(t, report.Errors)
	})

	t.Run("UnsupportedScalar", func(t *testing.T) {
		n := node.NewMem("n").SetScalar("fn", func() {})
		w := jsonstream.New(io.Discard)
		require.NoError(t, w.BeginObject())

		_, err := export.ExtractSubNode(w, n, export.WithLogger(quietLogger()))
		assert.True(t, uerrors.IsStructuralWrite(err))
	})

	t.Run("InvalidChunkSize", func(t *testing.T) {
		_, err := export.ExtractSubNode(jsonstreamInObject(t, io.Discard), node.NewMem("n"), export.WithChunkSize(1000))
		assert.True(t, uerrors.IsValidationError(err))
	})
}

func jsonstreamInObject(t *testing.T, out io.Writer) *jsonstream.Writer {
	t.Helper()
	w := jsonstream.New(out)
	require.NoError(t, w.BeginObject())
	return w
}
