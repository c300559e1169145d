/*
Package export serializes node trees into the UGC export JSON format.

ExtractSubNode writes a node's properties and its children, recursively,
as members of an already opened object:

	{
	  "jcr:title": "Welcome",
	  "tags": ["a", "b"],
	  "jcr:created": 1425211200500,
	  "ugcExport:encodedDataFieldName": "file",
	  "ugcExport:encodedData": "aGVsbG8=",
	  "ugcExport:timestampFields": ["jcr:created"],
	  "ugcExport:subNodes": {"reply1": {...}}
	}

Timestamps are written as epoch milliseconds and listed in
timestampFields. A binary property is replaced by the
encodedDataFieldName / encodedData pair; its bytes are streamed into the
encodedData string in base64 chunks of a fixed, 3-aligned size, so no
payload is ever held in memory.

ExtractAttachment writes a single attachment node as filename, mime type
and data members.

A failing binary source never aborts an export. The open string is
closed, an error member is written next to it, and the failure is listed
in the returned Report. Only failures of the output itself are returned
as errors.
*/
package export
