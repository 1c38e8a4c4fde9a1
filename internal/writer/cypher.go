package writer

import "github.com/teranos/skg-bridge/internal/rows"

// writeOrder is the fixed per-kind write order from spec.md §4.5: referenced
// nodes before referencers, append-only ephemeral writes before upsert-
// persistent ones.
var writeOrder = []rows.Kind{
	rows.KindFrame,
	rows.KindCamera,
	rows.KindPlayerTrack,
	rows.KindBallTrack,
	rows.KindPTZState,
	rows.KindCamParams,
	rows.KindCameraConfigUpdate,
	rows.KindFusionBall3D,
	rows.KindFusedPlayer,
	rows.KindIntent,
}

// cypherFor returns the UNWIND $rows statement for kind. FusionBall3D and
// FusedPlayer carry a second, best-effort edge statement (see
// edgeStatementFor); Intent's edge is part of its primary statement and is
// not swallowed on failure.
func cypherFor(kind rows.Kind) string {
	switch kind {
	case rows.KindFrame:
		return `UNWIND $rows AS row
MERGE (f:Frame {tickID: row.tickID})
SET f.timestamp = row.timestamp`

	case rows.KindCamera:
		return `UNWIND $rows AS row
MERGE (c:Camera {cameraID: row.cameraID})
SET c.timestamp = row.timestamp, c.last_active_timestamp = row.last_active_timestamp`

	case rows.KindPlayerTrack:
		return `UNWIND $rows AS row
CREATE (p:PlayerTrack)
SET p.track_id = row.track_id,
    p.tickID = row.current_tick,
    p.timestamp = row.timestamp,
    p.last_updated = row.timestamp,
    p.category = row.category,
    p.world_x = row.world_x,
    p.world_y = row.world_y,
    p.world_z = row.world_z,
    p.bbox_x = row.bbox_x,
    p.bbox_y = row.bbox_y,
    p.bbox_w = row.bbox_w,
    p.bbox_h = row.bbox_h,
    p.ptz_pan = row.ptz_pan,
    p.ptz_tilt = row.ptz_tilt,
    p.ptz_zoom = row.ptz_zoom,
    p.distance = row.distance,
    p.ray = row.ray
WITH row, p
MERGE (f:Frame {tickID: row.current_tick})
MERGE (c:Camera {cameraID: row.cameraID})
CREATE (f)-[:HAS_ACTIVE_TRACK]->(p)
CREATE (c)-[:TRACKS_PLAYER]->(p)`

	case rows.KindBallTrack:
		return `UNWIND $rows AS row
CREATE (b:BallTrack)
SET b.track_id = row.track_id,
    b.tickID = row.current_tick,
    b.timestamp = row.timestamp,
    b.last_updated = row.timestamp,
    b.phi = row.phi,
    b.velocity_x = row.velocity_x,
    b.velocity_y = row.velocity_y,
    b.velocity_z = row.velocity_z,
    b.movement_score = row.movement_score,
    b.is_best = row.is_best,
    b.score = row.score,
    b.ray = row.ray
WITH row, b
MERGE (f:Frame {tickID: row.current_tick})
MERGE (c:Camera {cameraID: row.cameraID})
CREATE (f)-[:HAS_ACTIVE_TRACK]->(b)
CREATE (c)-[:TRACKS_BALL]->(b)`

	case rows.KindPTZState:
		return `UNWIND $rows AS row
CREATE (s:PTZState)
SET s = row
WITH row, s
FOREACH (_ IN CASE WHEN row.tickID IS NOT NULL THEN [1] ELSE [] END |
  MERGE (f:Frame {tickID: row.tickID})
  CREATE (f)-[:HAS_PTZ_STATE]->(s)
)
WITH row, s
MERGE (c:Camera {cameraID: row.cameraID})
CREATE (c)-[:HAS_PTZ_STATE]->(s)`

	case rows.KindCamParams:
		return `UNWIND $rows AS row
CREATE (p:CamParams)
SET p = row
WITH row, p
FOREACH (_ IN CASE WHEN row.tickID IS NOT NULL THEN [1] ELSE [] END |
  MERGE (f:Frame {tickID: row.tickID})
  CREATE (f)-[:HAS_CAM_PARAMS]->(p)
)
WITH row, p
MERGE (c:Camera {cameraID: row.cameraID})
CREATE (c)-[:HAS_CAM_PARAMS]->(p)`

	case rows.KindCameraConfigUpdate:
		return `UNWIND $rows AS row
MERGE (cc:CameraConfig {cameraID: row.cameraID})
SET cc.gimbal_position = row.gimbal_position,
    cc.camera_parameters = row.camera_parameters,
    cc.last_updated = row.timestamp`

	case rows.KindFusionBall3D:
		return "UNWIND $rows AS row\n" +
			"MERGE (b:FusionBall3D {id: 'singleton'})\n" +
			"SET b.`3dposition` = row.position_world,\n" +
			"    b.velocity_mps = row.velocity_mps,\n" +
			"    b.status = row.status,\n" +
			"    b.fusion_confidence = row.fusion_confidence,\n" +
			"    b.timestamp = row.timestamp"

	case rows.KindFusedPlayer:
		return `UNWIND $rows AS row
MERGE (p:FusedPlayer {id: row.id})
SET p = row`

	case rows.KindIntent:
		return `UNWIND $rows AS row
MERGE (i:Intent {cameraID: row.cameraID})
SET i = row
WITH row, i
MERGE (cc:CameraConfig {cameraID: row.cameraID})
MERGE (cc)-[:HAS_INTENT]->(i)`

	default:
		return ""
	}
}

// edgeStatementFor returns the best-effort persistent-edge statement for
// kinds that upsert an edge from Scene_Descriptor separately from their
// primary write, per spec.md §4.5. Returns "" for kinds with no such edge.
func edgeStatementFor(kind rows.Kind) string {
	switch kind {
	case rows.KindFusionBall3D:
		return `MATCH (sd:Scene_Descriptor), (b:FusionBall3D {id: 'singleton'})
MERGE (sd)-[:HAS_BALL]->(b)`
	case rows.KindFusedPlayer:
		return `UNWIND $rows AS row
MATCH (sd:Scene_Descriptor), (p:FusedPlayer {id: row.id})
MERGE (sd)-[:HAS_PLAYER]->(p)`
	default:
		return ""
	}
}
