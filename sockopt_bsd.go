//go:build freebsd || netbsd

package tcp

import "golang.org/x/sys/unix"

const sendFlags = unix.MSG_NOSIGNAL

func setNoSigpipe(fd int) {
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}

// setMark is ignored, SO_MARK is Linux only.
func setMark(fd int, mark int) error { return nil }
