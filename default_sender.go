package tcp

import (
	"sync"
)

var (
	defaultSender *Sender
	once          sync.Once
)

// DefaultSender returns a shared singleton instance of the Sender.
//
// It is created on first use with DefaultOptions, so ConnectTimeout must be
// configured before the first call to take effect.
func DefaultSender() *Sender {
	once.Do(func() {
		defaultSender = NewSender(DefaultOptions())
	})
	return defaultSender
}
