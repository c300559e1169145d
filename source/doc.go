/*
Package source defines where exported node trees come from.

The main interface is Source, which loads the node at a path together
with its subtree:

	type Source interface {
	    Load(ctx context.Context, path string) (node.Node, error)
	}

Implementations:
  - ddb: DynamoDB implementation using a single-table node layout
  - mock: In-memory mock implementation for testing

Property values are classified into node.Scalar, node.StringList,
node.Timestamp and node.Binary by the source, so the serializer never
inspects raw storage types.
*/
package source
