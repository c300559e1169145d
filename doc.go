/*
Package ugcexport exports user generated content trees as streaming JSON
records for migration between content repositories.

A record mirrors one node: its properties become members, timestamps are
written as epoch milliseconds and listed under ugcExport:timestampFields,
binary properties are base64 encoded in chunks straight from their source,
and children nest under ugcExport:subNodes. Memory use stays bounded by one
chunk no matter how large an attachment is.

Key Features:
  - Streaming output, nothing buffered beyond one base64 chunk
  - Pluggable node sources (DynamoDB, in-memory mock)
  - Content errors embedded in the record instead of aborting the export
  - Semantic error types for better error handling
  - Thread-safe source management

Basic Usage:

	exporter := ugcexport.NewExporter(export.WithChunkSize(1440))

	client, _ := ddb.NewDynamoDBClient(ctx, accessKey, secretKey, region)
	exporter.RegisterSource("ugc", ddb.NewDynamodbSource(client, "ugc-table"))

	report, err := exporter.Export(ctx, os.Stdout, "ugc", "/content/usergenerated/forum")
	if err == nil && report.Partial() {
	    // some binary content could not be read; see report.Errors
	}

The lower level building blocks live in subpackages: jsonstream for the
JSON writer, export for the serializer and attachment extractor, node for
the tree model and source for loaders.
*/
package ugcexport
