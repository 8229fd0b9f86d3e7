//go:build linux || darwin || freebsd || netbsd || openbsd

package tcp

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Connect is ConnectWithTimeout bounded by the package ConnectTimeout.
func Connect(h Handle, sa unix.Sockaddr) error {
	return ConnectWithTimeout(h, sa, ConnectTimeout)
}

// ConnectWithTimeout performs a non-blocking connect of h to sa and waits
// at most timeout for it to complete; a non-positive timeout falls back to
// ConnectTimeout.
//
// A nil error means connected, and h is back in blocking mode.
// *ErrConnect means the peer timed out, refused or was unreachable.
// Any other error means the connect could not be attempted properly.
// The handle is never closed here.
func ConnectWithTimeout(h Handle, sa unix.Sockaddr, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = ConnectTimeout
	}
	if err := h.SetBlocking(false); err != nil {
		return errors.Wrap(err, "set non-blocking")
	}
	err := waitConnected(h, sa, timeout)
	// Restoring blocking mode takes precedence over the connect result
	if bErr := h.SetBlocking(true); bErr != nil {
		return errors.Wrap(bErr, "restore blocking")
	}
	return err
}

// waitConnected issues the connect and polls for writability until the
// deadline. Every failure is an *ErrConnect.
func waitConnected(h Handle, sa unix.Sockaddr, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	inProgress, err := doConnect(int(h), sa)
	if err != nil {
		return &ErrConnect{err}
	}
	if !inProgress {
		return nil
	}
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &ErrConnect{ErrTimeout}
		}
		ready, err := pollWritable(int(h), remaining)
		if err != nil {
			return &ErrConnect{err}
		}
		if ready {
			break
		}
	}
	errCode, err := unix.GetsockoptInt(int(h), unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return &ErrConnect{os.NewSyscallError("getsockopt", err)}
	}
	if errCode != 0 {
		return newErrConnect(errCode)
	}
	return nil
}

// doConnect calls the connect syscall with error handled.
// NOTE: return value: inProgress, error
func doConnect(fd int, sa unix.Sockaddr) (bool, error) {
	switch err := unix.Connect(fd, sa); err {
	case unix.EINPROGRESS, unix.EALREADY, unix.EINTR:
		return true, nil
	case nil, unix.EISCONN:
		// already connected
		return false, nil
	default:
		return false, os.NewSyscallError("connect", err)
	}
}

// pollWritable waits up to timeout for fd to become writable or errored.
// An interrupted poll reports not ready so the caller can recompute the
// remaining time.
func pollWritable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	n, err := unix.Poll(fds, pollTimeoutMS(timeout))
	if err == unix.EINTR {
		return false, nil
	}
	if err != nil {
		return false, os.NewSyscallError("poll", err)
	}
	return n > 0, nil
}

// pollTimeoutMS rounds d up to whole milliseconds.
func pollTimeoutMS(d time.Duration) int {
	return int((d + time.Millisecond - 1) / time.Millisecond)
}

// newErrConnect returns a ErrConnect with given error code
func newErrConnect(errCode int) *ErrConnect {
	return &ErrConnect{unix.Errno(errCode)}
}
