package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasChangedFirstPayloadAlwaysTriggers(t *testing.T) {
	c := New()
	assert.True(t, c.HasChangedDefault("all_tracks.cam1", map[string]any{"x": 1.0}))
}

func TestHasChangedSuppressesWithinTolerance(t *testing.T) {
	c := New()
	payload := map[string]any{"x": 1.0, "y": 2.0}
	assert.True(t, c.HasChanged("all_tracks.cam1", payload, 0.001))

	nearlyIdentical := map[string]any{"x": 1.0005, "y": 2.0}
	assert.False(t, c.HasChanged("all_tracks.cam1", nearlyIdentical, 0.001))
}

func TestHasChangedTriggersBeyondTolerance(t *testing.T) {
	c := New()
	c.HasChanged("all_tracks.cam1", map[string]any{"x": 1.0}, 0.001)

	changed := map[string]any{"x": 1.1}
	assert.True(t, c.HasChanged("all_tracks.cam1", changed, 0.001))
}

func TestHasChangedDifferentKeySets(t *testing.T) {
	c := New()
	c.HasChanged("s", map[string]any{"a": 1.0}, 0.01)
	assert.True(t, c.HasChanged("s", map[string]any{"a": 1.0, "b": 2.0}, 0.01))
}

func TestHasChangedNestedSlices(t *testing.T) {
	c := New()
	c.HasChanged("s", map[string]any{"pos": []any{1.0, 2.0, 3.0}}, 0.01)
	assert.False(t, c.HasChanged("s", map[string]any{"pos": []any{1.0, 2.0, 3.0}}, 0.01))
	assert.True(t, c.HasChanged("s", map[string]any{"pos": []any{1.0, 2.0, 3.5}}, 0.01))
}

func TestClearForgetsHistory(t *testing.T) {
	c := New()
	c.HasChanged("s", map[string]any{"x": 1.0}, 0.01)
	c.Clear()
	assert.True(t, c.HasChanged("s", map[string]any{"x": 1.0}, 0.01))
}
