package inet

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/inet/transport"
)

var schemes = map[string]string{
	"http": "80", "https": "443",
}

func (r *request) scheme() string {
	if r.secure {
		return "https"
	}
	return "http"
}

func (r *request) hostPort() string {
	return net.JoinHostPort(r.conn.host, strconv.FormatUint(uint64(r.conn.port), 10))
}

// hostHeader omits the port when it is the scheme default.
func hostHeader(r *request) string {
	if schemes[r.scheme()] == strconv.FormatUint(uint64(r.conn.port), 10) {
		if strings.Contains(r.conn.host, ":") {
			return "[" + r.conn.host + "]"
		}
		return r.conn.host
	}
	return r.hostPort()
}

func (r *request) url() *url.URL {
	return &url.URL{Scheme: r.scheme(), Host: hostHeader(r)}
}

// dial opens the stream a request is written to, either directly or through
// the session's proxy, and returns it with the request target to use.
func (s *Stack) dial(ctx context.Context, r *request) (conn net.Conn, br *bufio.Reader, target string, err error) {
	proxy, err := s.cfg.Proxy(r.url())
	if err != nil {
		return nil, nil, "", errors.Wrap(err, "inet: resolving proxy")
	}

	target = r.object
	if proxy == nil {
		conn, err = s.cfg.Dial(ctx, "tcp", r.hostPort())
	} else {
		conn, err = s.dialProxy(ctx, proxy)
		if err == nil && !r.secure {
			// plain requests are forwarded by the proxy, in absolute-form
			target = r.url().String() + r.object
			if auth := proxyAuth(proxy); auth != "" && !r.has("Proxy-Authorization") {
				r.set("Proxy-Authorization", auth)
			}
		} else if err == nil {
			err = s.tunnel(conn, r, proxy)
		}
	}
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, nil, "", errors.Wrapf(err, "inet: connecting to %s", r.hostPort())
	}

	if r.secure {
		config := s.cfg.TLSConfig.Clone()
		if config == nil {
			config = &tls.Config{}
		}
		config.ServerName = r.conn.host
		c := tls.Client(conn, config)
		if err := c.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, nil, "", errors.Wrapf(err, "inet: tls handshake with %s", r.hostPort())
		}
		conn = c
	}
	return conn, bufio.NewReader(conn), target, nil
}

func (s *Stack) dialProxy(ctx context.Context, proxy *url.URL) (net.Conn, error) {
	if proxy.Scheme != "http" && proxy.Scheme != "https" { // TODO: socks5 proxies from ALL_PROXY
		return nil, errors.New("unsupported proxy scheme: " + proxy.Scheme)
	}
	hp := proxy.Host
	if proxy.Port() == "" {
		hp = net.JoinHostPort(proxy.Hostname(), schemes[proxy.Scheme])
	}
	conn, err := s.cfg.Dial(ctx, "tcp", hp)
	if err != nil {
		return nil, err
	}
	if proxy.Scheme == "https" {
		config := s.cfg.TLSConfig.Clone()
		if config == nil {
			config = &tls.Config{}
		}
		config.ServerName = proxy.Hostname()
		c := tls.Client(conn, config)
		if err := c.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		conn = c
	}
	return conn, nil
}

// tunnel issues a CONNECT for the request's host over a proxy connection.
func (s *Stack) tunnel(conn net.Conn, r *request, proxy *url.URL) error {
	hp := r.hostPort()
	var fields header.Fields
	if auth := proxyAuth(proxy); auth != "" {
		fields.Set("Proxy-Authorization", auth)
	}
	if err := transport.WriteHead(conn, "CONNECT", hp, hp, fields); err != nil {
		return err
	}
	br := bufio.NewReader(conn)
	resp, err := transport.ReadResponse(br, "CONNECT")
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("proxy server returned error. status:%d, body:%s", resp.StatusCode, string(body))
	}
	if br.Buffered() != 0 {
		return errors.New("proxy server sent data before the tunnel was used")
	}
	return nil
}

func proxyAuth(proxy *url.URL) string {
	if proxy.User == nil {
		return ""
	}
	password, _ := proxy.User.Password()
	return "Basic " + basicAuth(proxy.User.Username(), password)
}
