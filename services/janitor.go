package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner is anything holding per-client state that goes stale, such as the
// rate limiter buckets and the live websocket connections.
type Pruner interface {
	Prune(maxIdle time.Duration) int
}

// PrunerFunc adapts a plain function to Pruner.
type PrunerFunc func(maxIdle time.Duration) int

func (f PrunerFunc) Prune(maxIdle time.Duration) int { return f(maxIdle) }

// Janitor periodically drops idle per-client state.
type Janitor struct {
	pruners  map[string]Pruner
	interval time.Duration
	maxIdle  time.Duration
	log      *zap.Logger
}

func NewJanitor(interval, maxIdle time.Duration, log *zap.Logger) *Janitor {
	return &Janitor{
		pruners:  make(map[string]Pruner),
		interval: interval,
		maxIdle:  maxIdle,
		log:      log,
	}
}

// Add registers a pruner under name. Not safe to call after Start.
func (j *Janitor) Add(name string, p Pruner) *Janitor {
	j.pruners[name] = p
	return j
}

// Start runs RunOnce on every tick until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.RunOnce()
			}
		}
	}()
}

// RunOnce prunes every registered pruner and returns the count removed per
// name.
func (j *Janitor) RunOnce() map[string]int {
	removed := make(map[string]int, len(j.pruners))
	for name, p := range j.pruners {
		n := p.Prune(j.maxIdle)
		removed[name] = n
		if n > 0 {
			j.log.Info("pruned idle entries", zap.String("pruner", name), zap.Int("removed", n))
		}
	}
	return removed
}
