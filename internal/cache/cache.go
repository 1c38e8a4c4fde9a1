// Package cache suppresses graph writes whose payload is semantically equal
// to the last payload seen on the same subject.
package cache

import (
	"reflect"
	"sync"

	"github.com/teranos/skg-bridge/internal/util"
)

const defaultTolerance = 0.01

// Cache holds the last-seen payload per subject behind a single mutex. A
// synchronous fast path is used on the hot all_tracks.* route (no channel
// hop), matching spec.md §5.
type Cache struct {
	mu   sync.Mutex
	last map[string]any
}

// New returns an empty change-suppression cache.
func New() *Cache {
	return &Cache{last: make(map[string]any)}
}

// HasChanged compares payload against the stored value for subject using
// tolerance for numeric leaves. If nothing material changed it returns
// false without mutating the cache; otherwise it stores payload and
// returns true.
func (c *Cache) HasChanged(subject string, payload any, tolerance float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.last[subject]
	if ok && !meaningfullyDifferent(prev, payload, tolerance) {
		return false
	}
	c.last[subject] = payload
	return true
}

// HasChangedDefault is HasChanged with the default tolerance (0.01).
func (c *Cache) HasChangedDefault(subject string, payload any) bool {
	return c.HasChanged(subject, payload, defaultTolerance)
}

// Clear drops all stored payloads, used during shutdown.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = make(map[string]any)
}

// meaningfullyDifferent implements the deep structural compare from
// spec.md §4.2: different types differ; maps compare key-set then
// recursively; slices compare element-wise by position; float64s compare
// with |a-b| <= tolerance; everything else uses equality.
func meaningfullyDifferent(a, b any, tolerance float64) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return true
	}

	switch av := a.(type) {
	case map[string]any:
		bv := b.(map[string]any)
		if len(av) != len(bv) {
			return true
		}
		for k, aval := range av {
			bval, ok := bv[k]
			if !ok {
				return true
			}
			if meaningfullyDifferent(aval, bval, tolerance) {
				return true
			}
		}
		return false
	case []any:
		bv := b.([]any)
		if len(av) != len(bv) {
			return true
		}
		for i := range av {
			if meaningfullyDifferent(av[i], bv[i], tolerance) {
				return true
			}
		}
		return false
	case float64:
		bv := b.(float64)
		return util.AbsFloat64(av-bv) > tolerance
	default:
		return !reflect.DeepEqual(a, b)
	}
}
