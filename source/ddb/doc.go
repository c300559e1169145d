/*
Package ddb provides a DynamoDB implementation of the source.Source interface.

Nodes are stored one item per node in a single table:

	PK  = "NODE#{Path}"            // Becomes "NODE#/content/forum/topic1"
	SK  = "NODE"                   // Static value
	PK1 = "PARENT#{ParentPath}"    // Children index partition
	SK1 = "{Order}#{Name}"         // Zero-padded position keeps sibling order

Every other attribute is a node property. Load reads the root item with
GetItem and then walks the subtree breadth-first through the GSI1 children
index, paging and retrying throttled queries:

	src := ddb.NewDynamodbSource(client, "ugc",
	    ddb.WithTimestampAttributes("jcr:created", "jcr:lastModified"),
	    ddb.WithPageSize(100),
	    ddb.WithMaxRetries(3),
	)
	root, err := src.Load(ctx, "/content/usergenerated/forum")

Attributes listed with WithTimestampAttributes are read as timestamps:
strings in strfmt date-time layouts, numbers as epoch milliseconds.
Binary attributes become node.Binary values.

Put writes a node tree in the same layout, which is how fixtures and
imports populate a table.
*/
package ddb
