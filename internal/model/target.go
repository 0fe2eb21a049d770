package model

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var schemes = map[string]uint16{
	"http": 80, "https": 443,
}

// Target is what a handle-based HTTP API needs to know about a URL: where to
// connect, what object to request and whether the transport is secure.
type Target struct {
	URL *url.URL

	Scheme   string
	Host     string // without brackets or port
	Port     uint16
	User     string
	Password string
	Object   string // path and query, never the fragment
	Secure   bool
}

// ParseTarget parses rawURL into a Target. Only the hypertext schemes are
// recognised, a missing port falls back to the scheme default.
func ParseTarget(rawURL string) (*Target, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Wrap(KindURL, "parse url", err)
	}
	def, ok := schemes[u.Scheme]
	if !ok || u.Opaque != "" {
		return nil, Wrap(KindURL, "parse url", errors.Errorf("unrecognised scheme `%s`", u.Scheme))
	}
	host := u.Hostname()
	if host == "" {
		return nil, Wrap(KindURL, "parse url", url.InvalidHostError("empty host"))
	}

	t := &Target{
		URL:    u,
		Scheme: u.Scheme,
		Host:   host,
		Port:   def,
		Object: RequestObject(u),
		Secure: u.Scheme == "https",
	}
	if p := u.Port(); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil || port == 0 {
			return nil, Wrap(KindURL, "parse url", errors.Errorf("invalid port %q", p))
		}
		t.Port = uint16(port)
	}
	if u.User != nil {
		t.User = u.User.Username()
		t.Password, _ = u.User.Password()
	}
	return t, nil
}

// RequestObject returns the origin-form request target of u.
func RequestObject(u *url.URL) string {
	object := u.EscapedPath()
	if object == "" {
		object = "/"
	}
	if u.ForceQuery || u.RawQuery != "" {
		object += "?" + u.RawQuery
	}
	return object
}

// HostPort is the host:port to dial.
func (t *Target) HostPort() string {
	return net.JoinHostPort(t.Host, strconv.FormatUint(uint64(t.Port), 10))
}

// HeaderHost is the Host header form, without the default port.
func (t *Target) HeaderHost() string {
	if schemes[t.Scheme] == t.Port {
		if strings.Contains(t.Host, ":") {
			return "[" + t.Host + "]"
		}
		return t.Host
	}
	return t.HostPort()
}
