package transport_test

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/inet/transport"
)

type headCase struct {
	target, host string
	fields       header.Fields
	data         string
}

var headShouldBe = map[string]headCase{
	"BasicRequest": {
		target: "/", host: "www.example.com",
		data: "GET / HTTP/1.1\r\nHost: www.example.com\r\n\r\n",
	},
	"QueryNonStandard": {
		target: "/test?1=33=1", host: "www.example.com",
		data: "GET /test?1=33=1 HTTP/1.1\r\nHost: www.example.com\r\n\r\n",
	},
	"HeaderNotCanonicalized": {
		target: "/", host: "www.example.com",
		fields: header.Fields{{Name: "x-123-vv", Value: "1"}},
		data:   "GET / HTTP/1.1\r\nHost: www.example.com\r\nx-123-vv: 1\r\n\r\n",
	},
	"HeaderOrderKept": {
		target: "/", host: "www.example.com:8080",
		fields: header.Fields{{Name: "B", Value: "2"}, {Name: "A", Value: "1"}},
		data:   "GET / HTTP/1.1\r\nHost: www.example.com:8080\r\nB: 2\r\nA: 1\r\n\r\n",
	},
	"Latin1Value": {
		target: "/", host: "h",
		fields: header.Fields{{Name: "X-Name", Value: "Zoë"}},
		data:   "GET / HTTP/1.1\r\nHost: h\r\nX-Name: Zo\xeb\r\n\r\n",
	},
}

func TestWriteHead(t *testing.T) {
	for name, cas := range headShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, transport.WriteHead(buf, "GET", tCase.target, tCase.host, tCase.fields))
			if err := iotest.TestReader(buf, []byte(tCase.data)); err != nil {
				t.Error(err)
			}
		})
	}
}

func read(t *testing.T, raw string) (*transport.Response, string, error) {
	t.Helper()
	resp, err := transport.ReadResponse(bufio.NewReader(strings.NewReader(raw)), "GET")
	if err != nil {
		return nil, "", err
	}
	body, err := io.ReadAll(resp.Body)
	return resp, string(body), err
}

func TestReadResponse(t *testing.T) {
	cases := map[string]struct {
		raw    string
		status int
		body   string
		length int64
	}{
		"ContentLength": {
			raw:    "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello trailing garbage",
			status: 200, body: "hello", length: 5,
		},
		"DuplicateEqualContentLength": {
			raw:    "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 2\r\n\r\nhi",
			status: 200, body: "hi", length: 2,
		},
		"Chunked": {
			raw:    "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5;ext=1\r\nhello\r\n7\r\n, world\r\n0\r\nX-Trailer: 1\r\n\r\n",
			status: 200, body: "hello, world", length: -1,
		},
		"ReadUntilClose": {
			raw:    "HTTP/1.0 200 OK\r\n\r\nstream until close",
			status: 200, body: "stream until close", length: -1,
		},
		"InterimSkipped": {
			raw:    "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 103 Early Hints\r\nLink: </a>\r\n\r\nHTTP/1.1 404 Not Found\r\nContent-Length: 3\r\n\r\nnope",
			status: 404, body: "nop", length: 3,
		},
		"NoContent": {
			raw:    "HTTP/1.1 204 No Content\r\n\r\n",
			status: 204, body: "", length: 0,
		},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			resp, body, err := read(t, c.raw)
			require.NoError(t, err)
			assert.Equal(t, c.status, resp.StatusCode)
			assert.Equal(t, c.body, body)
			assert.Equal(t, c.length, resp.ContentLength)
		})
	}
}

func TestReadResponseErrors(t *testing.T) {
	for name, raw := range map[string]string{
		"ConflictingContentLength": "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 3\r\n\r\nhi",
		"BadContentLength":         "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n",
		"NotHTTP":                  "SSH-2.0-OpenSSH\r\n\r\n",
		"BadStatus":                "HTTP/1.1 2000 OK\r\n\r\n",
		"TruncatedHead":            "HTTP/1.1 200 OK\r\nContent-Le",
		"Empty":                    "",
	} {
		_, _, err := read(t, raw)
		assert.Error(t, err, name)
	}
}

func TestReadResponseTruncatedBody(t *testing.T) {
	_, body, err := read(t, "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nshort")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "short", body)

	_, _, err = read(t, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\na\r\nshort")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadResponseConnectLeavesStream(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("HTTP/1.1 200 Connection established\r\n\r\n"))
	resp, err := transport.ReadResponse(br, "CONNECT")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 0, br.Buffered())
	n, err := resp.Body.Read(make([]byte, 1))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}
