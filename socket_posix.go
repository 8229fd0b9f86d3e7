//go:build linux || darwin || freebsd || netbsd || openbsd

package tcp

import (
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Handle is a raw socket descriptor.
// It is owned by whoever opened it and must be closed exactly once.
type Handle int

// InvalidHandle is returned by Open on failure.
const InvalidHandle Handle = -1

// domain returns the socket domain of f.
func (f Family) domain() (int, bool) {
	switch f {
	case FamilyIPv4:
		return unix.AF_INET, true
	case FamilyIPv6:
		return unix.AF_INET6, true
	}
	return unix.AF_UNSPEC, false
}

// Open creates a socket with CloseOnExec set.
// SO_REUSEADDR and, where the platform has it, SO_NOSIGPIPE are set on a
// best effort basis; their failures are ignored.
func Open(family Family, sotype, proto int) (Handle, error) {
	domain, ok := family.domain()
	if !ok {
		return InvalidHandle, errors.Wrapf(ErrInvalidAddr, "open %s socket", family)
	}
	fd, err := unix.Socket(domain, sotype, proto)
	if err != nil {
		return InvalidHandle, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	setNoSigpipe(fd)
	return Handle(fd), nil
}

// SetBlocking adds or removes O_NONBLOCK from the file status flags.
func (h Handle) SetBlocking(blocking bool) error {
	flags, err := unix.FcntlInt(uintptr(h), unix.F_GETFL, 0)
	if err != nil {
		return os.NewSyscallError("fcntl", err)
	}
	if blocking {
		flags &^= unix.O_NONBLOCK
	} else {
		flags |= unix.O_NONBLOCK
	}
	if _, err = unix.FcntlInt(uintptr(h), unix.F_SETFL, flags); err != nil {
		return os.NewSyscallError("fcntl", err)
	}
	return nil
}

// isBlocking reports whether O_NONBLOCK is clear.
func (h Handle) isBlocking() (bool, error) {
	flags, err := unix.FcntlInt(uintptr(h), unix.F_GETFL, 0)
	if err != nil {
		return false, os.NewSyscallError("fcntl", err)
	}
	return flags&unix.O_NONBLOCK == 0, nil
}

// SetTimeout applies d as both send and receive timeout.
// A zero duration is accepted and leaves the socket without timeouts.
func (h Handle) SetTimeout(d time.Duration) error {
	tv := timeval(d)
	if err := unix.SetsockoptTimeval(int(h), unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	if err := unix.SetsockoptTimeval(int(h), unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	return nil
}

// timeval splits d, truncated to milliseconds, into seconds and microseconds.
// A positive d never truncates to zero, which the kernel reads as no timeout.
func timeval(d time.Duration) unix.Timeval {
	switch {
	case d <= 0:
		d = 0
	case d < time.Millisecond:
		d = time.Millisecond
	default:
		d = d.Truncate(time.Millisecond)
	}
	return unix.NsecToTimeval(d.Nanoseconds())
}

// Send issues a single send of p and returns how many bytes the kernel
// accepted. Short writes are not retried.
func (h Handle) Send(p []byte) (int, error) {
	n, err := unix.SendmsgN(int(h), p, nil, nil, sendFlags)
	if err != nil {
		return 0, os.NewSyscallError("sendmsg", err)
	}
	return n, nil
}

// Recv issues a single receive into p.
func (h Handle) Recv(p []byte) (int, error) {
	n, _, err := unix.Recvfrom(int(h), p, sendFlags)
	if err != nil {
		return 0, os.NewSyscallError("recvfrom", err)
	}
	return n, nil
}

// Close releases the descriptor.
func (h Handle) Close() error {
	return os.NewSyscallError("close", unix.Close(int(h)))
}

// RemoteAddr returns the numeric address of the connected peer, or "" when
// h is not connected or not an inet socket.
func (h Handle) RemoteAddr() string {
	sa, err := unix.Getpeername(int(h))
	if err != nil {
		return ""
	}
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrFrom4(sa.Addr).String()
	case *unix.SockaddrInet6:
		return netip.AddrFrom16(sa.Addr).Unmap().String()
	}
	return ""
}

// sockaddr builds the sockaddr of a classified literal.
func sockaddr(family Family, addr string, port uint16) (unix.Sockaddr, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddr, "parse %q", addr)
	}
	switch {
	case family == FamilyIPv4 && ip.Is4():
		return &unix.SockaddrInet4{Port: int(port), Addr: ip.As4()}, nil
	case family == FamilyIPv6 && ip.Is6():
		return &unix.SockaddrInet6{Port: int(port), Addr: ip.As16()}, nil
	}
	return nil, &net.AddrError{
		Err:  "unsupported address family",
		Addr: addr,
	}
}
