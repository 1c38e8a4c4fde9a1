// Package rows translates an incoming bridge message into the graph rows
// the batch writer will execute, per the subject dispatch table in
// spec.md §4.3.
package rows

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/teranos/skg-bridge/errors"
	"github.com/teranos/skg-bridge/internal/cache"
)

// Kind names a graph entity kind. Values match the node labels in the
// data model (spec.md §3) exactly so the writer can switch on them, except
// CameraConfigUpdate, whose rows update existing CameraConfig nodes.
type Kind string

const (
	KindFrame              Kind = "Frame"
	KindCamera             Kind = "Camera"
	KindPlayerTrack        Kind = "PlayerTrack"
	KindBallTrack          Kind = "BallTrack"
	KindPTZState           Kind = "PTZState"
	KindCamParams          Kind = "CamParams"
	KindCameraConfigUpdate Kind = "CameraConfigUpdate"
	KindFusionBall3D       Kind = "FusionBall3D"
	KindFusedPlayer        Kind = "FusedPlayer"
	KindIntent             Kind = "Intent"
)

// Row is one (entity_kind, parameter row) pair.
type Row struct {
	Kind   Kind
	Params map[string]any
}

// Builder converts messages to rows. It owns the per-batch system timestamp
// and the ptzinfo change-cache gate described in spec.md §4.3.
type Builder struct {
	cache            *cache.Cache
	systemTimestamp  string
}

// NewBuilder returns a Builder gating ptzinfo.* through cache.
func NewBuilder(c *cache.Cache) *Builder {
	return &Builder{cache: c}
}

// SetSystemTimestamp sets the fallback timestamp used for this batch when a
// message carries none of its own.
func (b *Builder) SetSystemTimestamp(ts string) {
	b.systemTimestamp = ts
}

func (b *Builder) timestampFor(payload map[string]any) string {
	if ts, ok := payload["timestamp"].(string); ok && ts != "" {
		return ts
	}
	if lu, ok := payload["last_updated"].(float64); ok {
		return time.Unix(int64(lu), 0).UTC().Format("2006-01-02T15:04:05.000Z")
	}
	if b.systemTimestamp != "" {
		return b.systemTimestamp
	}
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// Build converts one (subject, payload) message into zero or more rows. If
// currentTick is zero the message is skipped, per spec.md §4.3.
func (b *Builder) Build(subject string, payload any, currentTick int64) ([]Row, error) {
	if currentTick == 0 {
		return nil, nil
	}

	switch {
	case subject == "tickperframe" || strings.HasPrefix(subject, "tickperframe"):
		data, ok := payload.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(errors.ErrBuild, "tickperframe payload not an object: %s", subject)
		}
		return []Row{{Kind: KindFrame, Params: map[string]any{
			"tickID":    count(data),
			"timestamp": b.timestampFor(data),
		}}}, nil

	case strings.HasPrefix(subject, "ptzinfo."):
		return b.buildPTZInfo(subject, payload, currentTick)

	case strings.HasPrefix(subject, "all_tracks."):
		return b.buildAllTracks(subject, payload, currentTick)

	case strings.HasPrefix(subject, "fusion.ball_3d"):
		return b.buildFusionBall3D(payload)

	case strings.HasPrefix(subject, "fused_players"):
		return b.buildFusedPlayers(payload)

	case strings.HasPrefix(subject, "intents.processed"):
		return b.buildIntent(payload)

	default:
		return nil, nil
	}
}

func count(data map[string]any) int64 {
	switch v := data["count"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

func cameraFromSubject(subject string) string {
	parts := strings.SplitN(subject, ".", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func (b *Builder) buildPTZInfo(subject string, payload any, currentTick int64) ([]Row, error) {
	if b.cache != nil && !b.cache.HasChangedDefault(subject, payload) {
		return nil, nil
	}
	data, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(errors.ErrBuild, "ptzinfo payload not an object: %s", subject)
	}
	cameraID := cameraFromSubject(subject)
	if cameraID == "" {
		return nil, errors.Wrapf(errors.ErrBuild, "ptzinfo subject missing camera: %s", subject)
	}
	ts := b.timestampFor(data)

	ptzRow := ensure(data, ptzDefaults)
	ptzRow["stateID"] = camTickID(cameraID, currentTick)
	ptzRow["cameraID"] = cameraID
	ptzRow["tickID"] = currentTick
	ptzRow["timestamp"] = ts

	return []Row{
		{Kind: KindCamera, Params: map[string]any{
			"cameraID":               cameraID,
			"tickID":                 currentTick,
			"timestamp":              ts,
			"last_active_timestamp":  ts,
		}},
		{Kind: KindPTZState, Params: ptzRow},
	}, nil
}

func (b *Builder) buildAllTracks(subject string, payload any, currentTick int64) ([]Row, error) {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(errors.ErrBuild, "all_tracks payload not an object: %s", subject)
	}
	cameraID := cameraFromSubject(subject)
	if cameraID == "" {
		return nil, errors.Wrapf(errors.ErrBuild, "all_tracks subject missing camera: %s", subject)
	}
	ts := b.timestampFor(data)

	var out []Row
	out = append(out, Row{Kind: KindFrame, Params: map[string]any{"tickID": currentTick, "timestamp": ts}})
	out = append(out, Row{Kind: KindCamera, Params: map[string]any{
		"cameraID":              cameraID,
		"tickID":                currentTick,
		"timestamp":             ts,
		"last_active_timestamp": ts,
	}})

	ptz, _ := data["PTZ"].(map[string]any)
	camParams, _ := data["cam_params"].(map[string]any)

	if len(ptz) > 0 {
		row := ensure(ptz, ptzDefaults)
		row["stateID"] = camTickID(cameraID, currentTick)
		row["cameraID"] = cameraID
		row["tickID"] = currentTick
		row["timestamp"] = ts
		out = append(out, Row{Kind: KindPTZState, Params: row})
	}
	if len(camParams) > 0 {
		row := ensure(camParams, camParamsDefaults)
		row["paramsID"] = camTickID(cameraID, currentTick)
		row["cameraID"] = cameraID
		row["tickID"] = currentTick
		row["timestamp"] = ts
		out = append(out, Row{Kind: KindCamParams, Params: row})
	}
	if len(ptz) > 0 || len(camParams) > 0 {
		gimbal := map[string]any{
			"pan":  ptz["panposition"],
			"tilt": ptz["tiltposition"],
			"zoom": ptz["zoomposition"],
		}
		camera := map[string]any{
			"intrinsic":   camParams["intrinsic"],
			"rotation":    camParams["rotation"],
			"translation": camParams["translation"],
		}
		out = append(out, Row{Kind: KindCameraConfigUpdate, Params: map[string]any{
			"cameraID":          cameraID,
			"gimbal_position":   toJSON(gimbal),
			"camera_parameters": toJSON(camera),
			"timestamp":         ts,
		}})
	}

	for _, raw := range sliceOf(data["balls"]) {
		ball, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		props := ensure(ball, ballDefaults)
		trackID := props["track_id"]
		if trackID == nil {
			trackID = props["id"]
		}
		if trackID == nil {
			continue
		}
		props["track_id"] = trackID
		props["cameraID"] = cameraID
		props["current_tick"] = currentTick
		props["timestamp"] = ts
		out = append(out, Row{Kind: KindBallTrack, Params: props})
	}

	for _, raw := range sliceOf(data["players"]) {
		player, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		props := ensure(player, playerDefaults)
		if props["track_id"] == nil {
			continue
		}
		props["cameraID"] = cameraID
		props["current_tick"] = currentTick
		props["timestamp"] = ts
		out = append(out, Row{Kind: KindPlayerTrack, Params: props})
	}

	return out, nil
}

func (b *Builder) buildFusionBall3D(payload any) ([]Row, error) {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(errors.ErrBuild, "fusion.ball_3d payload not an object")
	}
	props := ensure(data, fusionBall3DDefaults)
	props["timestamp"] = b.timestampFor(data)
	return []Row{{Kind: KindFusionBall3D, Params: props}}, nil
}

func (b *Builder) buildFusedPlayers(payload any) ([]Row, error) {
	items := sliceOf(payload)
	if items == nil {
		return nil, errors.Wrapf(errors.ErrBuild, "fused_players payload is not a list")
	}
	var out []Row
	for _, raw := range items {
		player, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		props := ensure(player, fusedPlayerDefaults)
		if props["id"] == nil {
			continue
		}
		out = append(out, Row{Kind: KindFusedPlayer, Params: map[string]any{
			"id":        props["id"],
			"x":         props["x"],
			"y":         props["y"],
			"z":         props["z"],
			"vel_x":     props["vel_x"],
			"vel_y":     props["vel_y"],
			"status":    props["status"],
			"category":  props["category"],
			"team":      props["team"],
			"timestamp": b.timestampFor(player),
		}})
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (b *Builder) buildIntent(payload any) ([]Row, error) {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(errors.ErrBuild, "intents.processed payload not an object")
	}
	props := ensure(data, intentDefaults)
	cameraID := props["camera_id"]
	if cameraID == nil {
		return nil, errors.Wrapf(errors.ErrBuild, "intents.processed missing camera_id")
	}

	var payloadJSON, ruleJSON any
	if props["payload"] != nil {
		payloadJSON = toJSON(props["payload"])
	}
	if props["rule_definition"] != nil {
		ruleJSON = toJSON(props["rule_definition"])
	}

	return []Row{{Kind: KindIntent, Params: map[string]any{
		"cameraID":        cameraID,
		"status":          props["status"],
		"intent_id":       props["intent_id"],
		"intent_type":     props["intent_type"],
		"resolved_ttl_ms": props["resolved_ttl_ms"],
		"payload":         payloadJSON,
		"rule_definition": ruleJSON,
		"reason":          props["reason"],
		"timestamp":       b.timestampFor(data),
	}}}, nil
}

// ensure fills absent or null fields from defaults, keeping the column
// shape stable across rows of the same kind (spec.md §4.3).
func ensure(data map[string]any, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(defaults))
	for k, v := range defaults {
		if val, ok := data[k]; ok && val != nil {
			out[k] = val
		} else {
			out[k] = v
		}
	}
	return out
}

func sliceOf(v any) []any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

func camTickID(cameraID string, tick int64) string {
	return fmt.Sprintf("%s_%d", cameraID, tick)
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
