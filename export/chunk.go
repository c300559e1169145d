/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package export

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	uerrors "github.com/suparena/ugcexport/errors"
)

// ValidateChunkSize checks that size is a positive multiple of 3.
func ValidateChunkSize(size int) error {
	if size <= 0 || size%3 != 0 {
		return uerrors.NewValidationError("chunkSize", fmt.Sprintf("must be a positive multiple of 3, got %d", size))
	}
	return nil
}

// EncodeChunks reads r in blocks of blockSize bytes and writes the base64
// encoding of each block to dst as soon as it is read.
//
// Every block except the last is full, and blockSize is a multiple of 3,
// so no chunk but the last carries padding and the concatenated output is
// exactly the standard base64 encoding of the whole source. Zero-length
// reads are retried; only io.EOF ends the stream, so a source that never
// reports it blocks forever.
//
// It returns the number of source bytes encoded. A read failure is
// returned as a *errors.BinaryReadError after all complete chunks read
// before it were written. A failure of dst is returned unchanged if it is
// already a structural error, else wrapped as one.
func EncodeChunks(r io.Reader, dst io.Writer, blockSize int) (int64, error) {
	if err := ValidateChunkSize(blockSize); err != nil {
		return 0, err
	}

	block := make([]byte, blockSize)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(blockSize))
	var total int64

	for {
		n, err := fill(r, block)
		if n > 0 {
			// right-size the last block so stale bytes from a previous read are not encoded
			out := encoded[:base64.StdEncoding.EncodedLen(n)]
			base64.StdEncoding.Encode(out, block[:n])
			if _, werr := dst.Write(out); werr != nil {
				if uerrors.IsStructuralWrite(werr) {
					return total, werr
				}
				return total, uerrors.NewStructuralWriteError("encodeChunk", werr)
			}
			total += int64(n)
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return total, nil
		default:
			return total, uerrors.NewBinaryReadError("", err)
		}
	}
}

// fill reads into buf until it is full or r fails. Unlike io.ReadFull it
// passes the reader's own error through, so io.EOF always means a clean end.
func fill(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
