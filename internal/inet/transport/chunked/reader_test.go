package chunked_test

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-geturl/internal/inet/transport/chunked"
)

func TestReader(t *testing.T) {
	r := chunked.NewReader(strings.NewReader("3\r\nabc\r\nA; name=v\r\n0123456789\r\n0\r\n\r\n"))
	require.NoError(t, iotest.TestReader(r, []byte("abc0123456789")))
}

func TestReaderSmallReads(t *testing.T) {
	r := chunked.NewReader(iotest.OneByteReader(strings.NewReader("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")))
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Wikipedia", string(b))
}

func TestReaderMalformed(t *testing.T) {
	for name, raw := range map[string]string{
		"BadHex":            "zz\r\nabc\r\n0\r\n\r\n",
		"MissingCRLF":       "3\r\nabcX\r\n0\r\n\r\n",
		"TooLarge":          "1000000000000000\r\n",
		"MissingTerminator": "3\r\nabc\r\n",
		"EmptySize":         "\r\n",
	} {
		_, err := io.ReadAll(chunked.NewReader(strings.NewReader(raw)))
		assert.Error(t, err, name)
	}
}
