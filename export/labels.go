/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package export

// Unprefixed labels of the export format.
const (
	LabelContent  = "content"
	LabelFilename = "filename"

	// Attachment nodes keep their payload in this child.
	ContentChild     = "jcr:content"
	MimeTypeProperty = "jcr:mimeType"
	DataProperty     = "jcr:data"
)

// Labels holds the reserved keys for one namespace.
type Labels struct {
	ContentType          string
	Attachments          string
	TimestampFields      string
	EncodedData          string
	EncodedDataFieldName string
	Error                string
	SubNodes             string
}

// LabelsFor returns the reserved keys prefixed with ns.
func LabelsFor(ns string) Labels {
	return Labels{
		ContentType:          ns + "contentType",
		Attachments:          ns + "attachments",
		TimestampFields:      ns + "timestampFields",
		EncodedData:          ns + "encodedData",
		EncodedDataFieldName: ns + "encodedDataFieldName",
		Error:                ns + "error",
		SubNodes:             ns + "subNodes",
	}
}
