// Package metrics tracks counters and batch-latency percentiles for the
// bridge's periodic log summaries.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Summary is a point-in-time snapshot suitable for logging.
type Summary struct {
	TotalReceived    int64
	ValidationErrors int64
	DroppedMessages  int64
	BatchCount       int64
	ItemsFlushed     int64
	AvgBatchSize     float64
	AvgBatchMS       float64
	P95BatchMS       float64
}

// Collector accumulates message/batch counters behind a single mutex, with
// synchronous fast-path methods for the hot validation-error/dropped-message
// counters per spec.md §5.
type Collector struct {
	mu sync.Mutex

	receivedBySubject map[string]int64
	validationErrors  int64
	droppedMessages   int64

	batchLatencies []float64 // milliseconds
	batchCount     int64
	itemsFlushed   int64
}

// New returns an empty metrics collector.
func New() *Collector {
	return &Collector{receivedBySubject: make(map[string]int64)}
}

// RecordMessageReceived increments the per-subject received counter.
func (c *Collector) RecordMessageReceived(subject string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receivedBySubject[subject]++
}

// RecordValidationError increments the dropped-on-parse counter. Safe to
// call without holding any other lock (sync fast path).
func (c *Collector) RecordValidationError() {
	c.mu.Lock()
	c.validationErrors++
	c.mu.Unlock()
}

// RecordDroppedMessage increments the dropped-message counter.
func (c *Collector) RecordDroppedMessage() {
	c.mu.Lock()
	c.droppedMessages++
	c.mu.Unlock()
}

// RecordBatch records one batch's item count (items_flushed_per_batch in the
// original) and wall-clock latency.
func (c *Collector) RecordBatch(itemCount int, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batchCount++
	c.itemsFlushed += int64(itemCount)
	c.batchLatencies = append(c.batchLatencies, float64(latency.Microseconds())/1000.0)
}

// Summary computes the current snapshot, including the avg/p95 batch
// latency via a simple nearest-rank sort (no streaming histogram — this is
// a periodic log line, not a hot path).
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, n := range c.receivedBySubject {
		total += n
	}

	s := Summary{
		TotalReceived:    total,
		ValidationErrors: c.validationErrors,
		DroppedMessages:  c.droppedMessages,
		BatchCount:       c.batchCount,
		ItemsFlushed:     c.itemsFlushed,
	}
	if c.batchCount > 0 {
		s.AvgBatchSize = float64(c.itemsFlushed) / float64(c.batchCount)
	}

	if len(c.batchLatencies) == 0 {
		return s
	}

	sorted := make([]float64, len(c.batchLatencies))
	copy(sorted, c.batchLatencies)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.AvgBatchMS = sum / float64(len(sorted))

	// Nearest rank: ceil(0.95 * n), as a 0-based index.
	p95Index := (len(sorted)*95+99)/100 - 1
	if p95Index < 0 {
		p95Index = 0
	}
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}
	s.P95BatchMS = sorted[p95Index]

	return s
}
