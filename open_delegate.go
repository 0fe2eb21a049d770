//go:build !windows && !geturl_inet
// +build !windows,!geturl_inet

package geturl

import (
	"github.com/frankli0324/go-geturl/internal/delegate"
	"github.com/frankli0324/go-geturl/internal/header"
)

// Response streams the body of an opened request. Read reports io.EOF at
// the end of the body and keeps doing so; Close releases the connection.
type Response = delegate.Response

func open(url string, fields header.Fields) (*Response, error) {
	return delegate.Open(url, fields)
}
