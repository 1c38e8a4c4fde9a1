package logger

// Standard field names for consistent structured logging across the bridge.
// Use these constants instead of raw strings to ensure consistency.
const (
	FieldError = "error"

	FieldCount   = "count"
	FieldSize    = "size"
	FieldAddress = "address"
	FieldQuery   = "query"

	// Bridge-specific
	FieldSubject  = "subject"   // pub/sub subject the message was received on
	FieldTickID   = "tick_id"   // current frame/tick correlation key
	FieldCameraID = "camera_id" // source camera identifier
	FieldKind     = "kind"      // graph entity kind (Frame, PlayerTrack, ...)
)
