package main

import (
	"context"

	tcp "github.com/tevino/tcp-oneshot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ConcurrentSender is a wrapper of tcp.Sender with concurrent sending capabilities.
type ConcurrentSender struct {
	sender      *tcp.Sender
	concurrency int
	counter     *Counter
	logger      *zap.Logger
}

// NewConcurrentSender creates a ConcurrentSender running at most concurrency sends at once.
func NewConcurrentSender(sender *tcp.Sender, concurrency int, logger *zap.Logger) *ConcurrentSender {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ConcurrentSender{
		sender:      sender,
		concurrency: concurrency,
		counter:     new(Counter),
		logger:      logger,
	}
}

// Count returns the count of given ID.
func (cs *ConcurrentSender) Count(id CounterID) uint64 {
	return cs.counter.Count(id)
}

// Run sends payload to addr requests times and returns when all sends are
// done. Sends not yet started are skipped once ctx is done.
func (cs *ConcurrentSender) Run(ctx context.Context, addr string, payload []byte, requests int) {
	var g errgroup.Group
	g.SetLimit(cs.concurrency)
	for i := 0; i < requests; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cs.doSend(ctx, addr, payload)
			return nil
		})
	}
	_ = g.Wait()
}

func (cs *ConcurrentSender) doSend(ctx context.Context, addr string, payload []byte) {
	err := cs.sender.SendAddr(ctx, addr, payload)
	cs.counter.Inc(CRequest)
	id, errType := classifyErr(err)
	cs.counter.Inc(id)
	if err != nil {
		cs.logger.Debug("send failed", zap.String("addr", addr), zap.String("errorType", errType), zap.Error(err))
	}
}
