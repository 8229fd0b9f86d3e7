package tcp

import (
	"context"
	"net"
	"net/netip"
)

// Resolver looks up the addresses of a host.
// *net.Resolver satisfies this interface.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

var _ Resolver = net.DefaultResolver

// ResolveFirst resolves host with the system resolver and returns the
// numeric form of the first usable address, or "" if there is none.
func ResolveFirst(host string) string {
	return ResolveFirstContext(context.Background(), net.DefaultResolver, host)
}

// ResolveFirstContext is ResolveFirst with a context and a custom Resolver.
// Records are tried in the order the resolver returned them; lookup
// failures and unrenderable records are indistinguishable from "no record".
func ResolveFirstContext(ctx context.Context, r Resolver, host string) string {
	addrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		if s := renderIP(a.IP); s != "" {
			return s
		}
	}
	return ""
}

// renderIP returns the numeric text of ip without zone, with IPv4-mapped
// addresses reduced to dotted quads.
func renderIP(ip net.IP) string {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return ""
	}
	return addr.Unmap().String()
}
