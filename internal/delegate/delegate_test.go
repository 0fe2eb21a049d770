package delegate_test

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-geturl/internal/delegate"
	"github.com/frankli0324/go-geturl/internal/echotest"
	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/model"
)

func get(t *testing.T, rawURL string, fields header.Fields) echotest.Reply {
	t.Helper()
	res, err := delegate.Open(rawURL, fields)
	require.NoError(t, err)
	defer res.Close()
	b, err := io.ReadAll(res)
	require.NoError(t, err)
	reply, err := echotest.Decode(b)
	require.NoError(t, err)
	return reply
}

func TestGet(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	reply := get(t, srv.URL+"/get?x=1&y=2#f", header.Fields{{Name: "Accept", Value: "*/*"}})
	assert.Equal(t, srv.URL+"/get?x=1&y=2", reply.URL)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, reply.Args)
	assert.Equal(t, model.Agent, reply.Headers["User-Agent"])
}

func TestHeaders(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	reply := get(t, srv.URL+"/headers", header.Fields{
		{Name: "Accept", Value: "application/json"},
		{Name: "User-Agent", Value: "custom/1"},
		{Name: "X-Dummy", Value: "value"},
	})
	assert.Equal(t, "application/json", reply.Headers["Accept"])
	assert.Equal(t, "custom/1", reply.Headers["User-Agent"])
	assert.Equal(t, "value", reply.Headers["X-Dummy"])
}

func TestReadAfterEOFAndClose(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	res, err := delegate.Open(srv.URL+"/stream?n=3000", nil)
	require.NoError(t, err)
	b, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Len(t, b, 3000)
	for i := 0; i < 3; i++ {
		n, err := res.Read(make([]byte, 16))
		assert.Equal(t, 0, n)
		assert.Equal(t, io.EOF, err)
	}
	require.NoError(t, res.Close())
	require.NoError(t, res.Close())
	_, err = res.Read(make([]byte, 16))
	assert.ErrorIs(t, err, model.ErrClosed)
}

func TestOpenErrors(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	unreachable := "http://" + l.Addr().String() + "/"
	require.NoError(t, l.Close())

	_, err = delegate.Open("gopher://example.org/", nil)
	assert.ErrorIs(t, err, model.ErrURL)
	_, err = delegate.Open("http://example.org/", header.Fields{{Name: "X-Dummy", Value: "☃"}})
	assert.ErrorIs(t, err, model.ErrEncoding)
	_, err = delegate.Open(unreachable, nil)
	assert.ErrorIs(t, err, model.ErrResource)
}
