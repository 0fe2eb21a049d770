package geturl_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	geturl "github.com/frankli0324/go-geturl"
	"github.com/frankli0324/go-geturl/internal/echotest"
)

func body(t *testing.T, req *geturl.Request) []byte {
	t.Helper()
	res, err := req.Open()
	require.NoError(t, err, "could not get `%s`", req.URL())
	defer res.Close()
	b, err := io.ReadAll(res)
	require.NoError(t, err, "could not read response from `%s`", req.URL())
	return b
}

func reply(t *testing.T, req *geturl.Request) echotest.Reply {
	t.Helper()
	r, err := echotest.Decode(body(t, req))
	require.NoError(t, err, "non JSON response from `%s`", req.URL())
	return r
}

func TestNewRequest(t *testing.T) {
	req := geturl.NewRequest("http://example.org/")
	assert.Equal(t, "http://example.org/", req.URL())
	v, ok := req.Header("Accept")
	assert.True(t, ok)
	assert.Equal(t, "*/*", v)
	_, ok = req.Header("User-Agent")
	assert.False(t, ok, "User-Agent is negotiated at open time")
}

func TestSetAndWithHeader(t *testing.T) {
	req := geturl.NewRequest("http://example.org/")
	assert.Same(t, req, req.SetHeader("Accept", "application/json"))

	other := req.WithHeader("X-Dummy", "value")
	assert.NotSame(t, req, other)
	_, ok := req.Header("X-Dummy")
	assert.False(t, ok)
	v, _ := other.Header("X-Dummy")
	assert.Equal(t, "value", v)
	v, _ = other.Header("Accept")
	assert.Equal(t, "application/json", v)
}

func TestGet(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	res := reply(t, geturl.NewRequest(srv.URL+"/get?x=1&y=2#f"))
	assert.Equal(t, srv.URL+"/get?x=1&y=2", res.URL)
	assert.Equal(t, "1", res.Args["x"])
	assert.Equal(t, "2", res.Args["y"])
	_, ok := res.Args["f"]
	assert.False(t, ok)
}

func TestHeaders(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	agent := geturl.Agent + " test_headers"
	req := geturl.NewRequest(srv.URL+"/headers").
		WithHeader("Accept", "application/json").
		WithHeader("User-Agent", agent).
		WithHeader("X-Dummy", "keiichi")
	res := reply(t, req)
	assert.Equal(t, "application/json", res.Headers["Accept"])
	assert.Equal(t, agent, res.Headers["User-Agent"])
	assert.Equal(t, "keiichi", res.Headers["X-Dummy"])
}

func TestUserAgent(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	res := reply(t, geturl.NewRequest(srv.URL+"/user-agent"))
	assert.Equal(t, geturl.Agent, res.UserAgent)
	assert.Regexp(t, `^get-url/\d+\.\d+\.\d+$`, geturl.Agent)
}

func TestReadAfterEOF(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	res, err := geturl.Get(srv.URL + "/stream?n=10")
	require.NoError(t, err)
	defer res.Close()
	b, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Len(t, b, 10)
	for i := 0; i < 3; i++ {
		n, err := res.Read(make([]byte, 4))
		assert.Equal(t, 0, n)
		assert.Equal(t, io.EOF, err)
	}
}

func TestOpenConsumesRequest(t *testing.T) {
	srv := echotest.NewServer()
	defer srv.Close()

	req := geturl.NewRequest(srv.URL + "/get")
	body(t, req)
	_, err := req.Open()
	assert.ErrorIs(t, err, geturl.ErrRequestConsumed)
}

func TestOpenErrors(t *testing.T) {
	_, err := geturl.Get("ftp://example.org/file")
	assert.ErrorIs(t, err, geturl.ErrURL)

	_, err = geturl.NewRequest("http://example.org/").SetHeader("X-Dummy", "€").Open()
	assert.ErrorIs(t, err, geturl.ErrEncoding)
	assert.Contains(t, err.Error(), `"€"`)

	var gerr *geturl.Error
	_, err = geturl.Get("gopher://example.org/")
	require.ErrorAs(t, err, &gerr)
}
