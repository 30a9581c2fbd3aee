// Package realip resolves the client address of a request that may have
// passed through reverse proxies.
package realip

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

var privateNets = []netip.Prefix{
	// IPv4 Private
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	// IPv4 Link-Local
	netip.MustParsePrefix("169.254.0.0/16"),
	// IPv4 Shared Address Space (RFC 6598)
	netip.MustParsePrefix("100.64.0.0/10"),
	// IPv4 Benchmarking (RFC 2544)
	netip.MustParsePrefix("198.18.0.0/15"),
	// IPv6 Unique Local Addresses (ULA)
	netip.MustParsePrefix("fc00::/7"),
	// IPv6 Link-local
	netip.MustParsePrefix("fe80::/10"),
}

// Resolver decides when forwarding headers may be trusted.
//
// With no trusted proxies configured, headers are trusted when the peer is
// a loopback or private address, which is safe only if direct client
// connections from private networks are not possible.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver parses trusted proxies given as IPs or CIDR blocks.
func NewResolver(trustedProxies []string) (*Resolver, error) {
	res := &Resolver{}
	for _, proxy := range trustedProxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}
		if strings.Contains(proxy, "/") {
			p, err := netip.ParsePrefix(proxy)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", proxy, err)
			}
			res.trusted = append(res.trusted, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(proxy)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", proxy, err)
		}
		addr = addr.Unmap()
		res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res, nil
}

// ClientIP returns the client address of r. Forwarding headers are only
// consulted when the peer in r.RemoteAddr is trusted.
func (res *Resolver) ClientIP(r *http.Request) (string, error) {
	peer, err := remoteAddr(r)
	if err != nil {
		return "", err
	}
	if !res.isTrusted(peer) {
		return peer.String(), nil
	}
	if ip, ok := fromHeaders(r); ok {
		return ip, nil
	}
	return peer.String(), nil
}

func (res *Resolver) isTrusted(peer netip.Addr) bool {
	if len(res.trusted) == 0 {
		return peer.IsLoopback() || IsPrivateIP(peer)
	}
	for _, p := range res.trusted {
		if p.Contains(peer) {
			return true
		}
	}
	return false
}

// fromHeaders prefers the first public IP found scanning headers
// right-to-left, then the first valid IP seen in headers.
func fromHeaders(r *http.Request) (string, bool) {
	var firstValid string

	for _, header := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		hv := r.Header.Get(header)
		if hv == "" {
			continue
		}

		var addrs []netip.Addr
		for part := range strings.SplitSeq(hv, ",") {
			addr, err := netip.ParseAddr(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			addrs = append(addrs, addr.Unmap())
		}
		if len(addrs) > 0 && firstValid == "" {
			firstValid = addrs[0].String()
		}

		for i := len(addrs) - 1; i >= 0; i-- {
			if addrs[i].IsGlobalUnicast() && !IsPrivateIP(addrs[i]) {
				return addrs[i].String(), true
			}
		}
	}

	return firstValid, firstValid != ""
}

func remoteAddr(r *http.Request) (netip.Addr, error) {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("no valid IP found in request: %q", r.RemoteAddr)
	}
	return addr.Unmap(), nil
}

// IsPrivateIP returns true if the IP address is in a private subnet.
func IsPrivateIP(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, n := range privateNets {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}
