package tcp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTimeout indicates the connect deadline was hit.
var ErrTimeout = &timeoutError{}

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "I/O timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

var (
	// ErrInvalidAddr is returned when an address is neither an IPv4 nor an IPv6 literal.
	ErrInvalidAddr = errors.New("address is neither an IPv4 nor an IPv6 literal")
	// ErrResolve is returned when a hostname yields no usable address.
	ErrResolve = errors.New("no usable address")
)

// ErrConnect is returned when the peer could not be reached in time.
// Timeouts, refusals and unreachable errors all end up here; Err holds
// ErrTimeout or the errno reported by the kernel.
type ErrConnect struct {
	Err error
}

func (e *ErrConnect) Error() string {
	return "connect: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *ErrConnect) Unwrap() error { return e.Err }

// Timeout reports whether the connect deadline was hit.
func (e *ErrConnect) Timeout() bool { return e.Err == ErrTimeout }

// ErrShortWrite is returned when the kernel accepted fewer bytes than requested.
type ErrShortWrite struct {
	Sent int
	Want int
}

func (e *ErrShortWrite) Error() string {
	return fmt.Sprintf("short write: sent %d of %d bytes", e.Sent, e.Want)
}

// ConnectCode maps a connector error to the classic 0/1/-1 status:
// 0 on success, 1 on timeout or refusal and -1 when the connect could
// not even be attempted.
func ConnectCode(err error) int {
	if err == nil {
		return 0
	}
	var errConnect *ErrConnect
	if errors.As(err, &errConnect) {
		return 1
	}
	return -1
}
