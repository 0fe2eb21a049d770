package inet

import (
	"context"
	"net"
)

// ResolveConfig customises how the default dialer resolves host names.
type ResolveConfig struct {
	CustomDNSServer string            // host:port of a DNS server to query instead of the system's
	Network         string            // one of "ip4", "ip6", default is "ip"
	StaticHosts     map[string]string // resembles /etc/hosts
}

// this type should not be used outside this file.
// prevents non-custom DNS server contexts to iterate through all keys
type dnsServerCtx struct {
	context.Context
	server string
}

var dnsServerCtxKey = &dnsServerCtx{nil, "dns-server"} // non-nil pointer to any object, definitely unique

func (c dnsServerCtx) Value(key interface{}) interface{} {
	if key == dnsServerCtxKey {
		return c.server
	}
	return c.Context.Value(key)
}

var customServerResolver = net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		if v, ok := ctx.Value(dnsServerCtxKey).(string); ok && v != "" {
			return zeroDialer.DialContext(ctx, network, v)
		}
		return zeroDialer.DialContext(ctx, network, address)
	},
}

var customDNSDialer = net.Dialer{
	Resolver: &customServerResolver,
}

// dialer returns a dial function honouring cfg. A nil cfg dials with the
// system resolver.
func (cfg *ResolveConfig) dialer() func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cfg == nil {
		return zeroDialer.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		switch cfg.Network {
		case "ip4":
			network = "tcp4"
		case "ip6":
			network = "tcp6"
		}
		if static, ok := cfg.StaticHosts[host]; ok {
			addr = net.JoinHostPort(static, port)
		}
		if dns := cfg.CustomDNSServer; dns != "" {
			return customDNSDialer.DialContext(dnsServerCtx{ctx, dns}, network, addr)
		}
		return zeroDialer.DialContext(ctx, network, addr)
	}
}
