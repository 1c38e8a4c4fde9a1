package writer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/skg-bridge/internal/rows"
)

type fakeExec struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeExec) Execute(_ context.Context, cypher string, _ map[string]any) error {
	f.calls = append(f.calls, cypher)
	if f.fail[cypher] {
		return assertErr
	}
	return nil
}

var assertErr = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestWriteBatchOrdersKindsBeforeReferencers(t *testing.T) {
	exec := &fakeExec{}
	w := New(exec)

	grouped := map[rows.Kind][]rows.Row{
		rows.KindPlayerTrack: {{Kind: rows.KindPlayerTrack, Params: map[string]any{"track_id": 1}}},
		rows.KindFrame:       {{Kind: rows.KindFrame, Params: map[string]any{"tickID": 1}}},
		rows.KindCamera:      {{Kind: rows.KindCamera, Params: map[string]any{"cameraID": "cam1"}}},
	}

	err := w.WriteBatch(context.Background(), grouped)
	require.NoError(t, err)
	require.Len(t, exec.calls, 3)
	assert.Contains(t, exec.calls[0], "Frame")
	assert.Contains(t, exec.calls[1], "Camera")
	assert.Contains(t, exec.calls[2], "PlayerTrack")
}

func TestWriteBatchAbortsOnPrimaryFailure(t *testing.T) {
	exec := &fakeExec{fail: map[string]bool{}}
	frameCypher := cypherFor(rows.KindFrame)
	exec.fail[frameCypher] = true
	w := New(exec)

	err := w.WriteBatch(context.Background(), map[rows.Kind][]rows.Row{
		rows.KindFrame:  {{Kind: rows.KindFrame, Params: map[string]any{"tickID": 1}}},
		rows.KindCamera: {{Kind: rows.KindCamera, Params: map[string]any{"cameraID": "cam1"}}},
	})
	require.Error(t, err)
	// Camera must never run once Frame (its predecessor in write order) fails.
	assert.Len(t, exec.calls, 1)
}

func TestWriteBatchTolerateMissingSceneOnFusionBall3D(t *testing.T) {
	exec := &fakeExec{fail: map[string]bool{}}
	exec.fail[edgeStatementFor(rows.KindFusionBall3D)] = true
	w := New(exec)

	err := w.WriteBatch(context.Background(), map[rows.Kind][]rows.Row{
		rows.KindFusionBall3D: {{Kind: rows.KindFusionBall3D, Params: map[string]any{"status": "tracked"}}},
	})
	require.NoError(t, err)
	assert.Len(t, exec.calls, 2)
}

func TestWriteBatchSkipsEmptyKinds(t *testing.T) {
	exec := &fakeExec{}
	w := New(exec)
	err := w.WriteBatch(context.Background(), map[rows.Kind][]rows.Row{})
	require.NoError(t, err)
	assert.Empty(t, exec.calls)
}
