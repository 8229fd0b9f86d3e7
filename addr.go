package tcp

import (
	"net/netip"
	"strings"
)

// Family is the address family of a textual address.
type Family int

// Available address families.
const (
	FamilyUnspec Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unspec"
	}
}

// IsIPv4 reports whether s is a dotted-quad IPv4 literal.
// Leading zeros, whitespace and ports are rejected.
func IsIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsIPv6 reports whether s is an IPv6 literal, including "::" compression
// and embedded IPv4 tails. Brackets, ports and zones are rejected.
func IsIPv6(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6() && addr.Zone() == ""
}

// NetworkFamily classifies s as FamilyIPv4, FamilyIPv6 or FamilyUnspec.
func NetworkFamily(s string) Family {
	if IsIPv4(s) {
		return FamilyIPv4
	}
	if IsIPv6(s) {
		return FamilyIPv6
	}
	return FamilyUnspec
}

// trimBrackets strips the brackets of a "[::1]" style literal.
func trimBrackets(s string) string {
	if len(s) > 1 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return s[1 : len(s)-1]
	}
	return s
}
