package flusher

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/panjf2000/ants"

	"github.com/srfbd/pagevault/src/pkg/assert"
)

// Pool is the slice of the buffer pool the flusher drives.
type Pool interface {
	FlushAllPages()
}

type Logger interface {
	Debugf(template string, args ...any)
	Errorf(template string, args ...any)
}

// Flusher periodically sweeps the buffer pool to disk. Sweeps run on a
// worker pool; when every worker is busy, submitting the next sweep waits
// for one to finish, so a sweep slower than the interval delays the tick loop.
type Flusher struct {
	pool     Pool
	interval time.Duration
	workers  *ants.Pool
	log      Logger
}

func New(pool Pool, interval time.Duration, workers int, log Logger) (*Flusher, error) {
	assert.Assert(interval > 0, "flush interval must be positive")

	wp, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create flush worker pool")
	}

	return &Flusher{
		pool:     pool,
		interval: interval,
		workers:  wp,
		log:      log,
	}, nil
}

// Run ticks until ctx is cancelled. Each tick submits one full sweep.
func (f *Flusher) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := f.workers.Submit(func() {
				f.pool.FlushAllPages()
			})
			if err != nil {
				f.log.Errorf("flush sweep not scheduled: %v", err)
				continue
			}

			f.log.Debugf("flush sweep scheduled")
		}
	}
}

// Close stops the worker pool. A final sweep is the owner's responsibility.
func (f *Flusher) Close() {
	f.workers.Release()
}
