// Package compression handles gzip-compressed vendor payloads
package compression

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"mime"
)

const (
	// ContentTypeGzip is the media type of a gzip payload
	ContentTypeGzip = "application/gzip"
)

// gzip member header (RFC 1952 ID1, ID2)
var gzipMagic = []byte{0x1f, 0x8b}

// Compressor gzips rendered documents
type Compressor struct {
	level int
}

// NewCompressor creates a compressor using the default gzip level
func NewCompressor() *Compressor {
	return &Compressor{level: gzip.DefaultCompression}
}

// NewCompressorWithLevel creates a compressor with the given gzip level
func NewCompressorWithLevel(level int) *Compressor {
	return &Compressor{level: level}
}

// Compress gzips data
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// IsGzip reports whether data starts with the gzip magic number
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// NewReader returns a reader yielding the decompressed stream when r is
// gzipped and the original bytes otherwise. Only the header is peeked, so
// the payload is never buffered in full.
func NewReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read payload header: %w", err)
	}
	if !IsGzip(head) {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return zr, nil
}

// ShouldCompress reports whether a rendered document of the given content
// type is worth compressing before it is handed on.
func ShouldCompress(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch mediaType {
	case ContentTypeGzip, "application/x-gzip", "application/zip":
		return false
	}
	return true
}
