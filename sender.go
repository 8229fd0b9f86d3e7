package tcp

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sender resolves hostnames and performs one-shot sends with fixed Options.
//
// All fields are safe to modify after construction but before first use.
// Sender's methods may be called by multiple goroutines simultaneously.
type Sender struct {
	// Resolver turns hostnames into addresses, net.DefaultResolver by default.
	Resolver Resolver

	// Options are passed to SendOnceWithOptions.
	Options Options

	// Logger receives sendStart/sendDone debug events, a no-op logger by default.
	Logger *zap.Logger
}

// NewSender creates a Sender using the system resolver.
func NewSender(opts Options) *Sender {
	return &Sender{
		Resolver: net.DefaultResolver,
		Options:  opts,
		Logger:   zap.NewNop(),
	}
}

// Send sends payload to host:port. IP literals are used as is, anything
// else is resolved and the first usable address wins.
// ctx only bounds name resolution.
func (s *Sender) Send(ctx context.Context, host string, port uint16, payload []byte) error {
	l := s.logger().Named("Send")
	t0 := time.Now()

	addr := trimBrackets(host)
	if NetworkFamily(addr) == FamilyUnspec {
		addr = ResolveFirstContext(ctx, s.resolver(), host)
		if addr == "" {
			err := errors.Wrapf(ErrResolve, "resolve %s", host)
			l.Debug("resolveFailed", zap.String("host", host), zap.Error(err))
			return err
		}
	}

	l.Debug("sendStart",
		zap.String("host", host),
		zap.String("addr", addr),
		zap.Uint16("port", port),
		zap.Int("bytes", len(payload)),
	)
	err := SendOnceWithOptions(addr, port, payload, s.Options)
	l.Debug("sendDone",
		zap.String("host", host),
		zap.String("addr", addr),
		zap.Uint16("port", port),
		zap.Duration("elapsed", time.Since(t0)),
		zap.Error(err),
	)
	return err
}

// SendAddr is Send with a host:port address.
func (s *Sender) SendAddr(ctx context.Context, hostport string, payload []byte) error {
	host, port, err := SplitHostPort(hostport)
	if err != nil {
		return err
	}
	return s.Send(ctx, host, port, payload)
}

// SplitHostPort splits a host:port address and validates the port.
func SplitHostPort(hostport string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", 0, errors.Wrapf(err, "parse %q", hostport)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, errors.Wrapf(err, "parse port of %q", hostport)
	}
	return host, uint16(port), nil
}

func (s *Sender) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Sender) resolver() Resolver {
	if s.Resolver == nil {
		return net.DefaultResolver
	}
	return s.Resolver
}
