package tcp

import "golang.org/x/sys/unix"

const sendFlags = unix.MSG_NOSIGNAL

// setNoSigpipe is unnecessary on OpenBSD, which has no SO_NOSIGPIPE.
func setNoSigpipe(fd int) {}

// setMark is ignored, SO_MARK is Linux only.
func setMark(fd int, mark int) error { return nil }
