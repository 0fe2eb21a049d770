// Package inet is a portable, userland implementation of a handle-based HTTP
// API. Sessions, connections and requests are handles in a bounded table; a
// request handle owns one network connection from Send until Close.
package inet

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"

	"golang.org/x/net/http/httpproxy"

	"github.com/frankli0324/go-geturl/internal/native"
)

const DefaultMaxHandles = 1024

type Config struct {
	MaxHandles uint        // defaults to DefaultMaxHandles
	TLSConfig  *tls.Config // cloned per request, ServerName is always set

	// Proxy returns the proxy to use for a request URL, nil for none.
	// Defaults to the HTTP_PROXY, HTTPS_PROXY and NO_PROXY environment.
	Proxy func(*url.URL) (*url.URL, error)

	// Dial opens TCP connections to servers and proxies. Defaults to a
	// dialer using Resolve.
	Dial    func(ctx context.Context, network, addr string) (net.Conn, error)
	Resolve *ResolveConfig
}

type Stack struct {
	cfg     Config
	handles *handleTable
}

var _ native.API = (*Stack)(nil)

// Default is the stack used by the geturl_inet build.
var Default = New(Config{})

var zeroDialer net.Dialer

func New(cfg Config) *Stack {
	if cfg.MaxHandles == 0 {
		cfg.MaxHandles = DefaultMaxHandles
	}
	if cfg.Proxy == nil {
		cfg.Proxy = httpproxy.FromEnvironment().ProxyFunc()
	}
	if cfg.Dial == nil {
		cfg.Dial = cfg.Resolve.dialer()
	}
	return &Stack{cfg: cfg, handles: newHandleTable(cfg.MaxHandles)}
}

// Len reports the number of live handles.
func (s *Stack) Len() int {
	return s.handles.len()
}
