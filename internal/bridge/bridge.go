// Package bridge wires the broker, cache, row builder, buffer, writer, TTL
// sweeper, and scene bootstrapper into the running service described in
// spec.md §4.8: init -> subscribe -> ensure DB + indexes + bootstrap ->
// run loop -> shutdown.
package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/teranos/skg-bridge/errors"
	"github.com/teranos/skg-bridge/internal/broker"
	"github.com/teranos/skg-bridge/internal/buffer"
	"github.com/teranos/skg-bridge/internal/cache"
	"github.com/teranos/skg-bridge/internal/config"
	"github.com/teranos/skg-bridge/internal/metrics"
	"github.com/teranos/skg-bridge/internal/rows"
	"github.com/teranos/skg-bridge/internal/scene"
	"github.com/teranos/skg-bridge/internal/ttl"
	"github.com/teranos/skg-bridge/internal/venue"
	"github.com/teranos/skg-bridge/internal/writer"
	"github.com/teranos/skg-bridge/logger"
)

// subjects is the fixed subscription set from spec.md §4.8.
var subjects = []string{
	"tickperframe",
	"all_tracks.*",
	"ptzinfo.*",
	"fusion.ball_3d",
	"intents.processed",
	"fused_players",
}

// lowValuePrefixes are subjects dropped when their payload has <= 3 fields.
var lowValuePrefixes = []string{"fps.", "colour-control.", "camera_mode_entry."}

// Broker is what the orchestrator needs from a connected broker client.
type Broker interface {
	Subscribe(subject string, handler broker.Handler) error
	IsClosed() bool
	Close()
}

// GraphClient is what the orchestrator needs from the graph store client.
type GraphClient interface {
	Execute(ctx context.Context, cypher string, params map[string]any) error
	CreateIndexes(ctx context.Context)
	CountLabel(ctx context.Context, label string) (int64, error)
}

// Bridge is the orchestrator.
type Bridge struct {
	cfg    config.Config
	broker Broker
	graph  GraphClient

	cache   *cache.Cache
	metrics *metrics.Collector
	builder *rows.Builder
	buf     *buffer.Buffer
	writer  *writer.Writer
	sweeper *ttl.Sweeper
	boot    *scene.Bootstrapper

	currentTick       atomic.Int64
	shutdownRequested atomic.Bool
	lastCleanup       time.Time
}

// New wires every component. provider supplies the fixed venue seed data
// for the scene bootstrapper.
func New(cfg config.Config, graph GraphClient, brokerClient Broker, provider venue.Provider) *Bridge {
	c := cache.New()
	return &Bridge{
		cfg:     cfg,
		broker:  brokerClient,
		graph:   graph,
		cache:   c,
		metrics: metrics.New(),
		builder: rows.NewBuilder(c),
		buf:     buffer.New(),
		writer:  writer.New(graph),
		sweeper: ttl.New(graph, cfg.RollingWindow()),
		boot:    scene.New(graph, provider),
	}
}

// Run subscribes to every subject, creates indexes, bootstraps the scene,
// and runs the batch loop until ctx is cancelled or Shutdown is called.
func (b *Bridge) Run(ctx context.Context) error {
	for _, subject := range subjects {
		if err := b.broker.Subscribe(subject, b.handleMessage); err != nil {
			return errors.Wrapf(err, "subscribing to %s", subject)
		}
	}
	logger.Infow("subscribed to all subjects", logger.FieldCount, len(subjects))

	b.graph.CreateIndexes(ctx)
	b.boot.Bootstrap(ctx)

	return b.batchLoop(ctx)
}

func (b *Bridge) isLowValue(subject string, payload any) bool {
	for _, prefix := range lowValuePrefixes {
		if strings.HasPrefix(subject, prefix) {
			data, ok := payload.(map[string]any)
			return ok && len(data) <= 3
		}
	}
	return false
}

func (b *Bridge) handleMessage(msg broker.Message) {
	var payload any
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		logger.Warnw("JSON parse error", logger.FieldSubject, msg.Subject, logger.FieldError, err)
		b.metrics.RecordValidationError()
		return
	}

	if b.isLowValue(msg.Subject, payload) {
		return
	}

	b.metrics.RecordMessageReceived(msg.Subject)

	switch {
	case msg.Subject == "tickperframe":
		if data, ok := payload.(map[string]any); ok {
			if count, ok := data["count"].(float64); ok {
				b.currentTick.Store(int64(count))
			}
		}
		b.buf.Add(msg.Subject, payload)

	case strings.HasPrefix(msg.Subject, "ptzinfo."):
		b.buf.Add(msg.Subject, payload)

	case strings.HasPrefix(msg.Subject, "all_tracks."):
		if b.cache.HasChanged(msg.Subject, payload, 0.001) {
			b.buf.Add(msg.Subject, payload)
		}

	case strings.HasPrefix(msg.Subject, "fusion.ball_3d"):
		b.buf.Add(msg.Subject, payload)

	case strings.HasPrefix(msg.Subject, "fused_players"):
		b.buf.Add(msg.Subject, payload)

	case strings.HasPrefix(msg.Subject, "intents.processed"):
		b.buf.Add(msg.Subject, payload)

	default:
		// The row builder drops subjects it has no branch for.
		b.buf.Add(msg.Subject, payload)
	}
}

func (b *Bridge) batchLoop(ctx context.Context) error {
	logger.Infow("starting batch processing loop")
	ticker := time.NewTicker(b.cfg.BatchInterval())
	defer ticker.Stop()

	metricsTicker := time.NewTicker(2 * time.Second)
	defer metricsTicker.Stop()

	b.lastCleanup = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-metricsTicker.C:
			b.logMetricsSummary()
		case <-ticker.C:
			if b.shutdownRequested.Load() {
				return nil
			}
			b.runOneTick(ctx)
		}
	}
}

func (b *Bridge) runOneTick(ctx context.Context) {
	tick := b.currentTick.Load()
	if tick == 0 {
		return
	}

	start := time.Now()
	items := b.buf.Drain(b.cfg.MaxBatchSize)
	if len(items) > 0 {
		grouped, err := b.buildGrouped(items, tick)
		if err != nil {
			logger.Errorw("row build error", logger.FieldError, err)
		} else if len(grouped) > 0 {
			if err := b.writer.WriteBatch(ctx, grouped); err != nil {
				logger.Errorw("batch write failed", logger.FieldTickID, tick, logger.FieldError, err)
			} else {
				b.metrics.RecordBatch(len(items), time.Since(start))
			}
		}
	}

	if time.Since(b.lastCleanup) >= b.cfg.CleanupInterval() {
		if err := b.sweeper.Sweep(ctx); err != nil {
			logger.Errorw("ttl sweep failed", logger.FieldError, err)
		}
		b.lastCleanup = time.Now()
	}
}

func (b *Bridge) buildGrouped(items []buffer.Item, tick int64) (map[rows.Kind][]rows.Row, error) {
	b.builder.SetSystemTimestamp(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))

	grouped := make(map[rows.Kind][]rows.Row)
	for _, item := range items {
		built, err := b.builder.Build(item.Subject, item.Payload, tick)
		if err != nil {
			logger.Warnw("dropping message that failed to build", logger.FieldSubject, item.Subject, logger.FieldError, err)
			b.metrics.RecordDroppedMessage()
			continue
		}
		for _, row := range built {
			grouped[row.Kind] = append(grouped[row.Kind], row)
		}
	}
	return grouped, nil
}

func (b *Bridge) logMetricsSummary() {
	s := b.metrics.Summary()
	sizes := b.buf.SubjectSizes()
	active := 0
	for _, n := range sizes {
		if n > 0 {
			active++
		}
	}

	var totalAddRate, totalProcessRate float64
	rates := b.buf.FillRates()
	for subject, rate := range rates {
		totalAddRate += rate.AddRate
		totalProcessRate += rate.ProcessRate
		if rate.AddRate > 0 || rate.ProcessRate > 0 {
			logger.Debugw("buffer fill rate", logger.FieldSubject, subject, "add_rate", rate.AddRate, "process_rate", rate.ProcessRate)
		}
	}

	logger.Infow("metrics summary",
		"total_received", s.TotalReceived,
		"items_flushed", s.ItemsFlushed,
		"avg_batch_size", s.AvgBatchSize,
		"avg_batch_ms", s.AvgBatchMS,
		"p95_batch_ms", s.P95BatchMS,
		"dropped_messages", s.DroppedMessages,
		"active_subjects", active,
		"buffer_add_rate", totalAddRate,
		"buffer_process_rate", totalProcessRate,
	)
}

// Shutdown stops the batch loop, closes the broker, drains the buffer once
// more, and clears the cache. Best-effort: errors are logged, not raised.
func (b *Bridge) Shutdown(ctx context.Context) {
	logger.Infow("starting graceful shutdown")
	b.shutdownRequested.Store(true)

	time.Sleep(b.cfg.BatchInterval() * 2)

	if !b.broker.IsClosed() {
		b.broker.Close()
	}

	if remaining := b.buf.Size(); remaining > 0 {
		tick := b.currentTick.Load()
		items := b.buf.Drain(remaining)
		if grouped, err := b.buildGrouped(items, tick); err == nil {
			if err := b.writer.WriteBatch(ctx, grouped); err != nil {
				logger.Errorw("failed to flush remaining batch on shutdown", logger.FieldError, err)
			}
		}
	}

	b.cache.Clear()

	final := b.metrics.Summary()
	logger.Infow("final metrics", "total_received", final.TotalReceived, "batch_count", final.BatchCount)
	logger.Infow("graceful shutdown completed")
}
