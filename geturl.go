// Package geturl is a minimal HTTP GET client: build a [Request], [Request.Open]
// it and read the body from the returned [Response].
//
// The transport is chosen when the package is built. Windows builds use the
// system WinINet stack; other platforms delegate to resty, or, with the
// geturl_inet build tag, use the portable inet handle stack. Exactly one
// backend is compiled in.
//
// A Response holds operating system resources and must be closed. It must
// not be closed from another goroutine while a Read is in progress.
package geturl

import (
	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/model"
)

const (
	Version = model.Version
	// Agent is the User-Agent sent when the request does not set one.
	Agent = model.Agent
)

type Error = model.Error

// Errors returned by Open and Read can be matched against these with
// [errors.Is].
var (
	ErrURL      = model.ErrURL      // unparseable URL or unsupported scheme
	ErrEncoding = model.ErrEncoding // header text outside ISO-8859-1
	ErrResource = model.ErrResource // a session, connect or send step failed
	ErrIO       = model.ErrIO       // reading the response failed

	ErrClosed          = model.ErrClosed
	ErrRequestConsumed = model.ErrRequestConsumed
)

// Request is a GET request under construction. It is cheap to pass around
// but must not be shared between goroutines, and can be opened only once.
type Request struct {
	url      string
	header   header.Fields
	consumed bool
}

// NewRequest stores url as is; it is parsed by Open. The request starts out
// with an "Accept: */*" header.
func NewRequest(url string) *Request {
	return &Request{
		url:    url,
		header: header.Fields{{Name: "Accept", Value: "*/*"}},
	}
}

func (r *Request) URL() string {
	return r.url
}

// Header returns the value of the header called exactly name.
func (r *Request) Header(name string) (string, bool) {
	return r.header.Get(name)
}

// SetHeader inserts or replaces the header called exactly name and returns r.
func (r *Request) SetHeader(name, value string) *Request {
	r.header.Set(name, value)
	return r
}

// WithHeader is like SetHeader but leaves r untouched and returns a copy.
func (r *Request) WithHeader(name, value string) *Request {
	c := &Request{url: r.url, header: r.header.Clone()}
	c.header.Set(name, value)
	return c
}

// Open sends the request and returns the response stream. Open consumes the
// request: calling it again returns ErrRequestConsumed.
func (r *Request) Open() (*Response, error) {
	if r.consumed {
		return nil, ErrRequestConsumed
	}
	r.consumed = true
	return open(r.url, r.header.Clone())
}

// Get is shorthand for NewRequest(url).Open().
func Get(url string) (*Response, error) {
	return NewRequest(url).Open()
}
