//go:build windows
// +build windows

package geturl

import (
	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/native"
	"github.com/frankli0324/go-geturl/internal/wininet"
)

// Response streams the body of an opened request. Read reports io.EOF at
// the end of the body and keeps doing so; Close releases the WinINet handles.
type Response = native.Response[wininet.API]

func open(url string, fields header.Fields) (*Response, error) {
	return native.Open(wininet.API{}, url, fields)
}
