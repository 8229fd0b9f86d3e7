package tcp

import "github.com/pkg/errors"

// SendOnce connects to the IP literal addr on port, sends payload with a
// single send call and closes the connection.
//
// A one-shot send goes idle -> opened -> connecting -> connected -> sent -> closed,
// any failure jumps straight to closed. The socket never outlives the call.
// A nil error means every byte of payload was accepted by the kernel.
func SendOnce(addr string, port uint16, payload []byte) error {
	return SendOnceWithOptions(addr, port, payload, DefaultOptions())
}

// sendResult turns the outcome of the single send call into the error
// reported to the caller. A failed write wins over a short one.
func sendResult(n, want int, err error) error {
	if err != nil {
		return errors.Wrap(err, "send")
	}
	if n != want {
		return &ErrShortWrite{Sent: n, Want: want}
	}
	return nil
}
