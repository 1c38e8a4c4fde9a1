package scene

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/skg-bridge/internal/venue"
)

type fakeExec struct {
	calls       []string
	sceneCount  int64
}

func (f *fakeExec) Execute(_ context.Context, cypher string, _ map[string]any) error {
	f.calls = append(f.calls, cypher)
	return nil
}

func (f *fakeExec) CountLabel(_ context.Context, _ string) (int64, error) {
	return f.sceneCount, nil
}

func TestBootstrapSkipsWhenSceneExists(t *testing.T) {
	exec := &fakeExec{sceneCount: 1}
	b := New(exec, venue.NewStaticProvider())
	b.Bootstrap(context.Background())
	assert.Empty(t, exec.calls)
}

func TestBootstrapSeedsSceneAndSixCameras(t *testing.T) {
	exec := &fakeExec{sceneCount: 0}
	b := New(exec, venue.NewStaticProvider())
	b.Bootstrap(context.Background())

	require.Len(t, exec.calls, 7) // 1 Scene_Descriptor + 6 CameraConfig
	assert.Contains(t, exec.calls[0], "Scene_Descriptor")
	for _, c := range exec.calls[1:] {
		assert.Contains(t, c, "CameraConfig")
	}
}
