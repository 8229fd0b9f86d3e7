package tcp

import "golang.org/x/sys/unix"

// Darwin has no MSG_NOSIGNAL, the socket carries SO_NOSIGPIPE instead.
const sendFlags = 0

func setNoSigpipe(fd int) {
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}

// setMark is ignored, SO_MARK is Linux only.
func setMark(fd int, mark int) error { return nil }
