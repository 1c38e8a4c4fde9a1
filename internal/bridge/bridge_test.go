package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/skg-bridge/internal/broker"
	"github.com/teranos/skg-bridge/internal/config"
	"github.com/teranos/skg-bridge/internal/venue"
)

type fakeBroker struct {
	subscriptions map[string]broker.Handler
	closed        bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{subscriptions: map[string]broker.Handler{}}
}

func (f *fakeBroker) Subscribe(subject string, handler broker.Handler) error {
	f.subscriptions[subject] = handler
	return nil
}

func (f *fakeBroker) IsClosed() bool { return f.closed }
func (f *fakeBroker) Close()         { f.closed = true }

// handlerFor resolves subject against the subscriptions, treating a
// trailing ".*" as a single-token wildcard the way NATS does.
func (f *fakeBroker) handlerFor(subject string) (broker.Handler, bool) {
	if h, ok := f.subscriptions[subject]; ok {
		return h, true
	}
	for pattern, h := range f.subscriptions {
		prefix, isWildcard := strings.CutSuffix(pattern, "*")
		if isWildcard && strings.HasPrefix(subject, prefix) && len(subject) > len(prefix) &&
			!strings.Contains(subject[len(prefix):], ".") {
			return h, true
		}
	}
	return nil, false
}

func (f *fakeBroker) deliver(t *testing.T, subject string, payload any) {
	t.Helper()
	h, ok := f.handlerFor(subject)
	require.True(t, ok, "no handler subscribed for %s", subject)
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	h(broker.Message{Subject: subject, Data: data})
}

// handle feeds a message straight to the bridge's handler, for subjects the
// bridge does not subscribe to.
func handle(t *testing.T, b *Bridge, subject string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	b.handleMessage(broker.Message{Subject: subject, Data: data})
}

type fakeGraph struct {
	calls      []string
	sceneCount int64
}

func (f *fakeGraph) Execute(_ context.Context, cypher string, _ map[string]any) error {
	f.calls = append(f.calls, cypher)
	return nil
}

func (f *fakeGraph) CreateIndexes(_ context.Context) {}

func (f *fakeGraph) CountLabel(_ context.Context, _ string) (int64, error) {
	return f.sceneCount, nil
}

func testConfig() config.Config {
	return config.Config{
		RollingWindowSeconds:   30,
		CleanupIntervalSeconds: 3600, // kept long so tests don't race a sweep
		BatchIntervalMS:        5,
		MaxBatchSize:           200,
	}
}

func TestRunSubscribesToEveryFixedSubject(t *testing.T) {
	fb := newFakeBroker()
	fg := &fakeGraph{sceneCount: 1}
	b := New(testConfig(), fg, fb, venue.NewStaticProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_ = b.Run(ctx)

	for _, s := range subjects {
		assert.Contains(t, fb.subscriptions, s)
	}
}

func TestHandleMessageDropsLowValueTopic(t *testing.T) {
	fb := newFakeBroker()
	fg := &fakeGraph{sceneCount: 1}
	b := New(testConfig(), fg, fb, venue.NewStaticProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_ = b.Run(ctx)

	handle(t, b, "fps.camera1", map[string]any{"a": 1, "b": 2})
	assert.Equal(t, 0, b.buf.Size())
}

func TestHandleMessageKeepsLowValueTopicWithManyFields(t *testing.T) {
	fb := newFakeBroker()
	fg := &fakeGraph{sceneCount: 1}
	b := New(testConfig(), fg, fb, venue.NewStaticProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_ = b.Run(ctx)

	handle(t, b, "fps.camera1", map[string]any{"a": 1, "b": 2, "c": 3, "d": 4})
	assert.Equal(t, 1, b.buf.Size())
}

func TestHandleMessageTicksPerFrameAdvancesCurrentTick(t *testing.T) {
	fb := newFakeBroker()
	fg := &fakeGraph{sceneCount: 1}
	b := New(testConfig(), fg, fb, venue.NewStaticProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_ = b.Run(ctx)

	fb.deliver(t, "tickperframe", map[string]any{"count": 42})
	assert.Equal(t, int64(42), b.currentTick.Load())
}

func TestHandleMessageAllTracksSuppressedWhenUnchanged(t *testing.T) {
	fb := newFakeBroker()
	fg := &fakeGraph{sceneCount: 1}
	b := New(testConfig(), fg, fb, venue.NewStaticProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_ = b.Run(ctx)

	payload := map[string]any{"players": []any{}, "balls": []any{}}
	fb.deliver(t, "all_tracks.camera1", payload)
	assert.Equal(t, 1, b.buf.Size())

	fb.deliver(t, "all_tracks.camera1", payload)
	assert.Equal(t, 1, b.buf.Size(), "identical payload should be suppressed by the change cache")
}

func TestShutdownClosesBrokerAndClearsCache(t *testing.T) {
	fb := newFakeBroker()
	fg := &fakeGraph{sceneCount: 1}
	b := New(testConfig(), fg, fb, venue.NewStaticProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_ = b.Run(ctx)

	payload := map[string]any{"players": []any{}, "balls": []any{}}
	fb.deliver(t, "all_tracks.camera1", payload)

	b.Shutdown(context.Background())
	assert.True(t, fb.closed)
	assert.True(t, b.cache.HasChanged("all_tracks.camera1", payload, 0.001), "cache should be empty after shutdown")
}
