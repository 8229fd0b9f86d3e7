package tcp

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

// NameserverResolver resolves hostnames against a single nameserver,
// bypassing the system resolver configuration.
type NameserverResolver struct {
	// Server is the nameserver address in host:port form.
	Server string

	// Client performs the exchanges, it defaults to UDP with a 3s timeout.
	Client *dns.Client
}

var _ Resolver = &NameserverResolver{}

// NewNameserverResolver creates a NameserverResolver querying server over UDP.
func NewNameserverResolver(server string) *NameserverResolver {
	return &NameserverResolver{
		Server: server,
		Client: &dns.Client{Net: "udp", Timeout: 3 * time.Second},
	}
}

// LookupIPAddr queries A then AAAA records for host and returns them in
// answer order. IP literals are returned as is.
func (r *NameserverResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IPAddr{{IP: ip}}, nil
	}

	var (
		addrs   []net.IPAddr
		lastErr error
	)
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		resp, err := r.exchange(ctx, host, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		for _, rr := range resp.Answer {
			switch rr := rr.(type) {
			case *dns.A:
				addrs = append(addrs, net.IPAddr{IP: rr.A})
			case *dns.AAAA:
				addrs = append(addrs, net.IPAddr{IP: rr.AAAA})
			}
		}
	}
	if len(addrs) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errors.Wrapf(ErrResolve, "lookup %s on %s", host, r.Server)
	}
	return addrs, nil
}

func (r *NameserverResolver) exchange(ctx context.Context, host string, qtype uint16) (*dns.Msg, error) {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(host), qtype)
	query.RecursionDesired = true

	client := r.Client
	if client == nil {
		client = new(dns.Client)
	}
	resp, _, err := client.ExchangeContext(ctx, query, r.Server)
	if err != nil {
		return nil, errors.Wrapf(err, "exchange %s %s", dns.TypeToString[qtype], host)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, errors.Errorf("lookup %s %s: %s", dns.TypeToString[qtype], host, dns.RcodeToString[resp.Rcode])
	}
	return resp, nil
}
