package tcp

import (
	"time"
)

// ConnectTimeout bounds the connect phase when no per-call timeout is given.
// NOTE: Set it during initialization, it is read without synchronization.
var ConnectTimeout = 3000 * time.Millisecond

// DefaultIOTimeout is the send/receive timeout applied by SendOnce.
const DefaultIOTimeout = 3000 * time.Millisecond

// Options contains configuration for a one-shot send
type Options struct {
	// ConnectTimeout bounds the non-blocking connect.
	ConnectTimeout time.Duration

	// IOTimeout is applied as both SO_SNDTIMEO and SO_RCVTIMEO once connected.
	IOTimeout time.Duration

	// Mark sets the SO_MARK socket option (Linux only)
	// This is useful for traffic marking and routing policies
	// Value of 0 means no mark is set
	Mark int
}

// DefaultOptions returns Options with default values
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: ConnectTimeout,
		IOTimeout:      DefaultIOTimeout,
		Mark:           0, // No mark by default
	}
}

// WithConnectTimeout sets the timeout for the connect phase
func (o Options) WithConnectTimeout(timeout time.Duration) Options {
	o.ConnectTimeout = timeout
	return o
}

// WithIOTimeout sets the send/receive timeout
func (o Options) WithIOTimeout(timeout time.Duration) Options {
	o.IOTimeout = timeout
	return o
}

// WithMark sets the SO_MARK socket option (Linux only)
func (o Options) WithMark(mark int) Options {
	o.Mark = mark
	return o
}
