// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package compression handles gzip-compressed vendor payloads.

Several vendors deliver their EPCIS exports gzipped. Parsers wrap their
input with [NewReader], which detects the gzip magic number and
decompresses transparently:

	r, err := compression.NewReader(body)
	if err != nil {
	    return err
	}
	id, err := p.Parse(ctx, r)

Rendered documents are gzipped with a [Compressor] when the output is
handed on compressed:

	if compression.ShouldCompress(contentType) {
	    compressed, err := compression.NewCompressor().Compress(document)
	}

# References

  - GZIP RFC 1952: https://datatracker.ietf.org/doc/html/rfc1952
*/
package compression
