package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<epcis:EPCISDocument xmlns:epcis="urn:epcglobal:epcis:xsd:1"><EPCISBody><EventList/></EPCISBody></epcis:EPCISDocument>`

func gunzip(t *testing.T, data []byte) []byte {
	t.Helper()
	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestCompressor_Compress(t *testing.T) {
	compressor := NewCompressor()

	// gzip adds ~20 bytes of framing, so the input must repeat to shrink
	testData := []byte(strings.Repeat(sampleDocument, 5))

	compressed, err := compressor.Compress(testData)
	require.NoError(t, err)
	assert.True(t, IsGzip(compressed))
	assert.Less(t, len(compressed), len(testData))
	assert.Equal(t, testData, gunzip(t, compressed))
}

func TestCompressor_EmptyData(t *testing.T) {
	compressed, err := NewCompressor().Compress([]byte{})
	require.NoError(t, err)
	assert.True(t, IsGzip(compressed))
	assert.Empty(t, gunzip(t, compressed))
}

func TestCompressor_InvalidLevel(t *testing.T) {
	_, err := NewCompressorWithLevel(42).Compress([]byte(sampleDocument))
	assert.Error(t, err)
}

func TestNewReader(t *testing.T) {
	compressed, err := NewCompressorWithLevel(9).Compress([]byte(sampleDocument))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
	}{
		{"gzip", compressed},
		{"plain", []byte(sampleDocument)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.input))
			require.NoError(t, err)
			out, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, sampleDocument, string(out))
		})
	}
}

func TestNewReader_Empty(t *testing.T) {
	r, err := NewReader(bytes.NewReader(nil))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestShouldCompress(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"application/xml", true},
		{"application/json", true},
		{"text/xml; charset=utf-8", true},
		{"application/gzip", false},
		{"application/x-gzip", false},
		{"application/zip", false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldCompress(tt.contentType))
		})
	}
}
