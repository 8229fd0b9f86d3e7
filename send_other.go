//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package tcp

import (
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// SendOnceWithOptions is a fake implementation on top of net.Dialer.
// NOTE: Mark is ignored on this platform.
func SendOnceWithOptions(addr string, port uint16, payload []byte, opts Options) (err error) {
	addr = trimBrackets(addr)
	if NetworkFamily(addr) == FamilyUnspec {
		return errors.Wrapf(ErrInvalidAddr, "send to %q", addr)
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = ConnectTimeout
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(addr, strconv.Itoa(int(port))), connectTimeout)
	if err != nil {
		if opErr, ok := err.(*net.OpError); ok && opErr.Timeout() {
			return &ErrConnect{ErrTimeout}
		}
		return &ErrConnect{err}
	}
	defer func() {
		cErr := conn.Close()
		if err == nil {
			err = cErr
		}
	}()
	ioTimeout := opts.IOTimeout
	if ioTimeout <= 0 {
		ioTimeout = DefaultIOTimeout
	}
	if err = conn.SetDeadline(time.Now().Add(ioTimeout)); err != nil {
		return errors.Wrap(err, "set I/O timeout")
	}
	n, err := conn.Write(payload)
	return sendResult(n, len(payload), err)
}
