package main

import (
	"errors"
	"sync/atomic"

	tcp "github.com/tevino/tcp-oneshot"
)

// CounterID names one of the counters of a run.
type CounterID int

// Available counter IDs.
const (
	CRequest CounterID = iota
	CSucceed
	CErrAddr
	CErrConnect
	CErrShortWrite
	CErrOther
	numCounters
)

// Counter counts the outcome of every send of a run. It is safe for
// concurrent use and needs no declaration: every CounterID has a slot.
type Counter struct {
	counts [numCounters]atomic.Uint64
}

// Inc bumps the counter of id and returns its new value.
func (c *Counter) Inc(id CounterID) uint64 {
	return c.counts[id].Add(1)
}

// Count returns the current value of the counter of id.
func (c *Counter) Count(id CounterID) uint64 {
	return c.counts[id].Load()
}

// Error types, used as metric labels.
const (
	errTypeAddr       = "invalid"
	errTypeConnect    = "connect"
	errTypeShortWrite = "short_write"
	errTypeOther      = "other"
)

// classifyErr maps a send error to its counter ID and error type.
func classifyErr(err error) (CounterID, string) {
	var (
		errConnect *tcp.ErrConnect
		errShort   *tcp.ErrShortWrite
	)
	switch {
	case err == nil:
		return CSucceed, ""
	case errors.Is(err, tcp.ErrInvalidAddr), errors.Is(err, tcp.ErrResolve):
		return CErrAddr, errTypeAddr
	case errors.As(err, &errConnect):
		return CErrConnect, errTypeConnect
	case errors.As(err, &errShort):
		return CErrShortWrite, errTypeShortWrite
	default:
		return CErrOther, errTypeOther
	}
}
