//go:build !windows && geturl_inet
// +build !windows,geturl_inet

package geturl

import (
	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/inet"
	"github.com/frankli0324/go-geturl/internal/native"
)

// Response streams the body of an opened request. Read reports io.EOF at
// the end of the body and keeps doing so; Close releases the inet handles.
type Response = native.Response[*inet.Stack]

func open(url string, fields header.Fields) (*Response, error) {
	return native.Open(inet.Default, url, fields)
}
