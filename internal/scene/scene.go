// Package scene seeds the persistent graph structure exactly once per
// process lifetime, per spec.md §4.7.
package scene

import (
	"context"
	"encoding/json"

	"github.com/teranos/skg-bridge/internal/venue"
	"github.com/teranos/skg-bridge/logger"
)

// Executor is the subset of the graph client the bootstrapper needs.
type Executor interface {
	Execute(ctx context.Context, cypher string, params map[string]any) error
	CountLabel(ctx context.Context, label string) (int64, error)
}

// Bootstrapper seeds Scene_Descriptor and the fixed CameraConfig set.
type Bootstrapper struct {
	exec     Executor
	provider venue.Provider
}

// New returns a Bootstrapper reading seed data from provider.
func New(exec Executor, provider venue.Provider) *Bootstrapper {
	return &Bootstrapper{exec: exec, provider: provider}
}

// Bootstrap is idempotent: it skips entirely if a Scene_Descriptor already
// exists. Failure logs but does not abort the service, matching
// scene_initializer.py's try/except-and-continue behavior.
func (b *Bootstrapper) Bootstrap(ctx context.Context) {
	count, err := b.exec.CountLabel(ctx, "Scene_Descriptor")
	if err != nil {
		logger.Errorw("failed to check Scene_Descriptor before bootstrap", logger.FieldError, err)
		return
	}
	if count > 0 {
		logger.Infow("Scene_Descriptor already exists, skipping bootstrap")
		return
	}

	markersJSON, err := json.Marshal(b.provider.PitchMarkers())
	if err != nil {
		logger.Errorw("failed to encode pitch markers", logger.FieldError, err)
		return
	}

	sceneCypher := `MERGE (sd:Scene_Descriptor {venue_id: $venue_id})
SET sd.units = 'meters', sd.up_axis = 'Z', sd.origin = 'PITCH_TOP_LEFT',
    sd.handedness = 'RIGHT', sd.version = '1.0', sd.pitch_markers = $pitch_markers`

	if err := b.exec.Execute(ctx, sceneCypher, map[string]any{
		"venue_id":      b.provider.VenueID(),
		"pitch_markers": string(markersJSON),
	}); err != nil {
		logger.Errorw("failed to bootstrap Scene_Descriptor", logger.FieldError, err)
		return
	}

	configs := b.provider.CameraConfigs()
	if len(configs) != 6 {
		logger.Warnw("unexpected camera config count at bootstrap", logger.FieldCount, len(configs))
	}

	for _, cfg := range configs {
		gimbalJSON, _ := json.Marshal(cfg.GimbalPosition)
		paramsJSON, _ := json.Marshal(cfg.CameraParameters)

		cameraCypher := `MERGE (cc:CameraConfig {cameraID: $cameraID})
SET cc.role = $role, cc.status = $status, cc.operation_mode = $operation_mode,
    cc.zoom_mode = $zoom_mode, cc.pan_range = $pan_range, cc.tilt_range = $tilt_range,
    cc.zoom_range = $zoom_range, cc.camerapos = $position, cc.venue = $venue,
    cc.gimbal_position = $gimbal_position, cc.camera_parameters = $camera_parameters
WITH cc
MATCH (sd:Scene_Descriptor {venue_id: $venue_id})
MERGE (sd)-[:HAS_CAMERA]->(cc)`

		if err := b.exec.Execute(ctx, cameraCypher, map[string]any{
			"cameraID":          cfg.CameraID,
			"role":              cfg.Role,
			"status":            cfg.Status,
			"operation_mode":    cfg.OperationMode,
			"zoom_mode":         cfg.ZoomMode,
			"pan_range":         cfg.PanRange[:],
			"tilt_range":        cfg.TiltRange[:],
			"zoom_range":        cfg.ZoomRange[:],
			"position":          cfg.Position[:],
			"venue":             cfg.Venue,
			"venue_id":          b.provider.VenueID(),
			"gimbal_position":   string(gimbalJSON),
			"camera_parameters": string(paramsJSON),
		}); err != nil {
			logger.Errorw("failed to bootstrap CameraConfig", logger.FieldCameraID, cfg.CameraID, logger.FieldError, err)
			continue
		}
	}

	logger.Infow("scene bootstrap completed", logger.FieldCount, len(configs))
}
