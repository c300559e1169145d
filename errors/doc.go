/*
Package errors provides semantic error types for the ugcexport library.

Errors fall in two groups. Sink-level failures abort an export:

	var (
	    ErrStructuralWrite  = errors.New("structural write failed")
	    ErrMaxDepthExceeded = errors.New("maximum tree depth exceeded")
	)

Content-level failures are embedded in the exported document as an
error field and reported back in the export report, so a single broken
attachment never aborts the export of a whole tree:

	var (
	    ErrBinaryRead        = errors.New("binary read failed")
	    ErrMissingAttachment = errors.New("missing attachment data")
	)

Usage:

	report, err := exporter.Export(ctx, w, "ddb", "/content/forum")
	if errors.IsStructuralWrite(err) {
	    // output is truncated, discard it
	}
	for _, cerr := range report.Errors {
	    if errors.IsBinaryRead(cerr) {
	        // partial payload, inspect the document
	    }
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
