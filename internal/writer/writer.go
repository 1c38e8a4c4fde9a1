// Package writer executes row-builder output against the graph store in
// the fixed, referent-before-referencer order from spec.md §4.5.
package writer

import (
	"context"

	"github.com/teranos/skg-bridge/errors"
	"github.com/teranos/skg-bridge/internal/rows"
	"github.com/teranos/skg-bridge/logger"
)

// Executor is the subset of the graph client the writer needs. Satisfied
// by *graphdb.Client; a fake implementation is used in tests.
type Executor interface {
	Execute(ctx context.Context, cypher string, params map[string]any) error
}

// Writer turns grouped rows into graph writes.
type Writer struct {
	exec Executor
}

// New returns a Writer executing against exec.
func New(exec Executor) *Writer {
	return &Writer{exec: exec}
}

// WriteBatch executes one statement per kind present in grouped, in the
// fixed write order. A failing primary statement aborts the whole batch,
// except the FusionBall3D/FusedPlayer persistent-edge statements, which are
// best-effort and only logged on failure.
func (w *Writer) WriteBatch(ctx context.Context, grouped map[rows.Kind][]rows.Row) error {
	for _, kind := range writeOrder {
		batch, ok := grouped[kind]
		if !ok || len(batch) == 0 {
			continue
		}

		params := make([]map[string]any, len(batch))
		for i, row := range batch {
			params[i] = row.Params
		}

		if err := w.exec.Execute(ctx, cypherFor(kind), map[string]any{"rows": params}); err != nil {
			return errors.Wrapf(errors.ErrWrite, "writing %s batch: %v", kind, err)
		}

		if edge := edgeStatementFor(kind); edge != "" {
			if err := w.exec.Execute(ctx, edge, map[string]any{"rows": params}); err != nil {
				logger.Warnw("persistent edge upsert failed, tolerating", logger.FieldKind, string(kind), logger.FieldError, err)
			}
		}
	}
	return nil
}
