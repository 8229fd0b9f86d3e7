//go:build linux || darwin || freebsd || netbsd || openbsd

package tcp

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// SendOnceWithOptions is SendOnce with explicit Options.
// Hostnames are rejected with ErrInvalidAddr before any socket is opened,
// resolve them first with ResolveFirst or use a Sender.
func SendOnceWithOptions(addr string, port uint16, payload []byte, opts Options) (err error) {
	addr = trimBrackets(addr)
	family := NetworkFamily(addr)
	if family == FamilyUnspec {
		return errors.Wrapf(ErrInvalidAddr, "send to %q", addr)
	}
	var sa unix.Sockaddr
	if sa, err = sockaddr(family, addr, port); err != nil {
		return err
	}
	var h Handle
	if h, err = Open(family, unix.SOCK_STREAM, 0); err != nil {
		return err
	}
	defer func() {
		// Socket should be closed anyway
		cErr := h.Close()
		// Error from close should be returned if no other error happened
		if err == nil {
			err = cErr
		}
	}()
	if opts.Mark != 0 {
		if err = setMark(int(h), opts.Mark); err != nil {
			return errors.Wrap(err, "set mark")
		}
	}
	if err = ConnectWithTimeout(h, sa, opts.ConnectTimeout); err != nil {
		return err
	}
	ioTimeout := opts.IOTimeout
	if ioTimeout <= 0 {
		ioTimeout = DefaultIOTimeout
	}
	if err = h.SetTimeout(ioTimeout); err != nil {
		return errors.Wrap(err, "set I/O timeout")
	}
	n, err := h.Send(payload)
	return sendResult(n, len(payload), err)
}
