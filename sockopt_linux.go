package tcp

import (
	"os"

	"golang.org/x/sys/unix"
)

// sendFlags keeps a broken connection from raising SIGPIPE.
const sendFlags = unix.MSG_NOSIGNAL

// setNoSigpipe is unnecessary on Linux, MSG_NOSIGNAL covers it.
func setNoSigpipe(fd int) {}

// setMark sets SO_MARK, which needs CAP_NET_ADMIN.
func setMark(fd int, mark int) error {
	return os.NewSyscallError("setsockopt", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_MARK, mark))
}
