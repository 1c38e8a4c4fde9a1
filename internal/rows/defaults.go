package rows

// Per-kind default property maps. Ensures every row of a given kind has the
// same column shape regardless of which fields the source message set,
// matching the defaults-mapping behavior in spec.md §4.3.
var (
	ptzDefaults = map[string]any{
		"panposition":   0.0,
		"tiltposition":  0.0,
		"zoomposition":  0.0,
		"pan_setpoint":  0.0,
		"tilt_setpoint": 0.0,
		"zoom_setpoint": 0.0,
		"power":         0.0,
		"speed":         0.0,
	}

	camParamsDefaults = map[string]any{
		"intrinsic":   nil,
		"rotation":    nil,
		"translation": nil,
	}

	playerDefaults = map[string]any{
		"track_id":    nil,
		"category":    "",
		"world_x":     0.0,
		"world_y":     0.0,
		"world_z":     0.0,
		"bbox_x":      0.0,
		"bbox_y":      0.0,
		"bbox_w":      0.0,
		"bbox_h":      0.0,
		"ptz_pan":     0.0,
		"ptz_tilt":    0.0,
		"ptz_zoom":    0.0,
		"distance":    0.0,
		"ray":         nil,
		"last_updated": nil,
	}

	ballDefaults = map[string]any{
		"track_id":       nil,
		"id":             nil,
		"phi":            0.0,
		"velocity_x":     0.0,
		"velocity_y":     0.0,
		"velocity_z":     0.0,
		"movement_score": 0.0,
		"is_best":        false,
		"score":          nil,
		"ray":            nil,
	}

	fusionBall3DDefaults = map[string]any{
		"position_world":    nil,
		"velocity_mps":      0.0,
		"status":            "",
		"fusion_confidence": 0.0,
	}

	fusedPlayerDefaults = map[string]any{
		"id":       nil,
		"x":        0.0,
		"y":        0.0,
		"z":        0.0,
		"vel_x":    0.0,
		"vel_y":    0.0,
		"status":   "",
		"category": "",
		"team":     "",
	}

	intentDefaults = map[string]any{
		"camera_id":       nil,
		"status":          "",
		"intent_id":       "",
		"intent_type":     "",
		"resolved_ttl_ms": 0.0,
		"payload":         nil,
		"rule_definition": nil,
		"reason":          "",
	}
)
