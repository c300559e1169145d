/*
Package node defines the hierarchical record walked by the exporter.

A Node exposes a name, an ordered list of properties and an ordered list
of children. Every property value is one of four kinds, decided once by
the data source:

	switch v := prop.Value.(type) {
	case node.Scalar:     // string, number, boolean, anything else
	case node.StringList: // ordered strings
	case node.Timestamp:  // instant, exported as epoch milliseconds
	case node.Binary:     // single-pass byte source
	}

Mem is an in-memory implementation used by sources and tests:

	post := node.NewMem("post").
	    SetScalar("jcr:title", "Hello").
	    SetStrings("tags", "a", "b").
	    SetTime("jcr:created", time.Now())
	post.NewChild("attachments")
*/
package node
