// Package ttl sweeps ephemeral graph nodes older than the rolling window,
// preserving persistent kinds, per spec.md §4.6.
package ttl

import (
	"context"
	"math"
	"time"

	"github.com/teranos/skg-bridge/errors"
	"github.com/teranos/skg-bridge/logger"
)

// Executor is the subset of the graph client the sweeper needs.
type Executor interface {
	Execute(ctx context.Context, cypher string, params map[string]any) error
	CountLabel(ctx context.Context, label string) (int64, error)
}

// sweepStep names one DETACH DELETE statement: label plus the timestamp-like
// property it compares against the cutoff.
type sweepStep struct {
	label    string
	tsColumn string
}

// sweepOrder is the fixed per-kind delete order from spec.md §4.6.
var sweepOrder = []sweepStep{
	{"PlayerTrack", "timestamp"},
	{"BallTrack", "timestamp"},
	{"PTZState", "timestamp"},
	{"CamParams", "timestamp"},
	{"Frame", "timestamp"},
	{"Camera", "last_active_timestamp"},
}

const (
	maxConflictRetries = 3
	baseBackoff        = 50 * time.Millisecond
	statementTimeout   = 10 * time.Second
)

// Sweeper deletes ephemeral nodes older than rollingWindow on demand.
type Sweeper struct {
	exec          Executor
	rollingWindow time.Duration
}

// New returns a Sweeper with the given rolling window.
func New(exec Executor, rollingWindow time.Duration) *Sweeper {
	return &Sweeper{exec: exec, rollingWindow: rollingWindow}
}

// Sweep runs one cleanup pass. On a statement timeout, a non-transient
// error, or exhausted conflict retries it stops at that kind and returns an
// ErrCleanup-wrapped error; the next scheduled sweep runs the whole pass
// again. It never deletes a persistent kind.
func (s *Sweeper) Sweep(ctx context.Context) error {
	preCount, err := s.exec.CountLabel(ctx, "Scene_Descriptor")
	if err != nil {
		logger.Warnw("pre-sweep Scene_Descriptor check failed", logger.FieldError, err)
	}

	cutoff := time.Now().Add(-s.rollingWindow).UTC().Format("2006-01-02T15:04:05.000Z")

	for _, step := range sweepOrder {
		cypher := "MATCH (n:" + step.label + ") WHERE n." + step.tsColumn + " < $cutoff DETACH DELETE n"

		if err := s.executeWithRetry(ctx, cypher, map[string]any{"cutoff": cutoff}); err != nil {
			logger.Errorw("ttl sweep aborted", logger.FieldKind, step.label, logger.FieldError, err)
			return errors.Wrapf(errors.ErrCleanup, "sweeping %s: %v", step.label, err)
		}
	}

	postCount, err := s.exec.CountLabel(ctx, "Scene_Descriptor")
	if err != nil {
		logger.Warnw("post-sweep Scene_Descriptor check failed", logger.FieldError, err)
		return nil
	}
	if postCount == 0 {
		logger.Errorw("CRITICAL: Scene_Descriptor missing after TTL sweep, manual bootstrap required",
			"pre_sweep_count", preCount, "post_sweep_count", postCount)
	}
	return nil
}

func (s *Sweeper) executeWithRetry(ctx context.Context, cypher string, params map[string]any) error {
	var lastErr error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		stepCtx, cancel := context.WithTimeout(ctx, statementTimeout)
		err := s.exec.Execute(stepCtx, cypher, params)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.IsTransient(err) || attempt == maxConflictRetries {
			return err
		}

		backoff := time.Duration(float64(baseBackoff) * math.Pow(2, float64(attempt)))
		logger.Warnw("ttl sweep statement conflicted, retrying", "attempt", attempt+1, logger.FieldError, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}
