package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummaryCountsMessagesAndBatches(t *testing.T) {
	c := New()
	c.RecordMessageReceived("tickperframe")
	c.RecordMessageReceived("all_tracks.cam1")
	c.RecordValidationError()
	c.RecordDroppedMessage()
	c.RecordBatch(10, 2*time.Millisecond)
	c.RecordBatch(5, 4*time.Millisecond)

	s := c.Summary()
	assert.Equal(t, int64(2), s.TotalReceived)
	assert.Equal(t, int64(1), s.ValidationErrors)
	assert.Equal(t, int64(1), s.DroppedMessages)
	assert.Equal(t, int64(2), s.BatchCount)
	assert.Equal(t, int64(15), s.ItemsFlushed)
	assert.InDelta(t, 7.5, s.AvgBatchSize, 0.01)
	assert.InDelta(t, 3.0, s.AvgBatchMS, 0.01)
}

func TestSummaryEmpty(t *testing.T) {
	c := New()
	s := c.Summary()
	assert.Zero(t, s.TotalReceived)
	assert.Zero(t, s.AvgBatchMS)
}
