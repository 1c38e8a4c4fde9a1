// Package venue provides the fixed pitch/camera seed data that
// scene.Bootstrap needs. This is the "injected provider returning venue
// constants" spec.md §1 names as an external collaborator.
package venue

// CameraConfig is one of the six fixed camera roles seeded at bootstrap.
type CameraConfig struct {
	CameraID         string
	Role             string
	Status           string
	OperationMode    string
	ZoomMode         string
	PanRange         [2]float64
	TiltRange        [2]float64
	ZoomRange        [2]float64
	Position         [3]float64
	GimbalPosition   map[string]any
	CameraParameters map[string]any
	Venue            string
}

// Provider supplies venue constants. The bootstrapper is the only caller.
type Provider interface {
	VenueID() string
	PitchMarkers() map[string][2]float64
	CameraConfigs() []CameraConfig
}

// StaticProvider returns the fixed 6-camera football-pitch layout, grounded
// on the standalone pitch-data generator this system shipped with.
type StaticProvider struct{}

// NewStaticProvider returns the default venue provider.
func NewStaticProvider() StaticProvider { return StaticProvider{} }

func (StaticProvider) VenueID() string { return "ozsports" }

func (StaticProvider) PitchMarkers() map[string][2]float64 {
	return map[string][2]float64{
		"center_spot":            {0.0, 0.0},
		"center_circle_radius":   {9.15, 0.0},
		"penalty_spot_home":      {-32.0, 0.0},
		"penalty_spot_away":      {32.0, 0.0},
		"goal_post_home_left":    {-52.5, -3.66},
		"goal_post_home_right":   {-52.5, 3.66},
		"goal_post_away_left":    {52.5, -3.66},
		"goal_post_away_right":   {52.5, 3.66},
		"corner_home_left":       {-52.5, -34.0},
		"corner_home_right":      {-52.5, 34.0},
		"corner_away_left":       {52.5, -34.0},
		"corner_away_right":      {52.5, 34.0},
		"penalty_area_home_left":  {-40.0, -20.16},
		"penalty_area_home_right": {-40.0, 20.16},
		"penalty_area_away_left":  {40.0, -20.16},
		"penalty_area_away_right": {40.0, 20.16},
		"six_yard_home_left":     {-46.0, -9.16},
		"six_yard_home_right":    {-46.0, 9.16},
		"six_yard_away_left":     {46.0, -9.16},
		"six_yard_away_right":    {46.0, 9.16},
	}
}

func (StaticProvider) CameraConfigs() []CameraConfig {
	identity := map[string]any{
		"intrinsic": [][]float64{{800.0, 0.0, 640.0}, {0.0, 800.0, 360.0}, {0.0, 0.0, 1.0}},
		"rotation":  [][]float64{{1.0, 0.0, 0.0}, {0.0, 1.0, 0.0}, {0.0, 0.0, 1.0}},
	}
	withTranslation := func(tx, ty, tz float64) map[string]any {
		out := map[string]any{"intrinsic": identity["intrinsic"], "rotation": identity["rotation"]}
		out["translation"] = []float64{tx, ty, tz}
		return out
	}

	return []CameraConfig{
		{
			CameraID: "camera1", Role: "main", Status: "ACTIVE", OperationMode: "auto", ZoomMode: "wide",
			PanRange: [2]float64{-180, 180}, TiltRange: [2]float64{-45, 45}, ZoomRange: [2]float64{1, 10},
			Position:         [3]float64{0, 0, 10},
			GimbalPosition:   map[string]any{"pan": 0.0, "tilt": 0.0, "zoom": 1.0},
			CameraParameters: withTranslation(0, 0, 10),
			Venue:            "ozsports",
		},
		{
			CameraID: "camera2", Role: "center", Status: "ACTIVE", OperationMode: "auto", ZoomMode: "wide",
			PanRange: [2]float64{-180, 180}, TiltRange: [2]float64{-45, 45}, ZoomRange: [2]float64{1, 10},
			Position:         [3]float64{0, 0, 15},
			GimbalPosition:   map[string]any{"pan": 0.0, "tilt": -10.0, "zoom": 1.5},
			CameraParameters: withTranslation(0, 0, 15),
			Venue:            "ozsports",
		},
		{
			CameraID: "camera3", Role: "l_sideline", Status: "ACTIVE", OperationMode: "auto", ZoomMode: "wide",
			PanRange: [2]float64{-180, 180}, TiltRange: [2]float64{-45, 45}, ZoomRange: [2]float64{1, 10},
			Position:         [3]float64{-45, 0, 12},
			GimbalPosition:   map[string]any{"pan": 90.0, "tilt": -5.0, "zoom": 1.0},
			CameraParameters: withTranslation(-45, 0, 12),
			Venue:            "ozsports",
		},
		{
			CameraID: "camera4", Role: "r_sideline", Status: "ACTIVE", OperationMode: "auto", ZoomMode: "wide",
			PanRange: [2]float64{-180, 180}, TiltRange: [2]float64{-45, 45}, ZoomRange: [2]float64{1, 10},
			Position:         [3]float64{45, 0, 12},
			GimbalPosition:   map[string]any{"pan": -90.0, "tilt": -5.0, "zoom": 1.0},
			CameraParameters: withTranslation(45, 0, 12),
			Venue:            "ozsports",
		},
		{
			CameraID: "camera5", Role: "l_goal", Status: "ACTIVE", OperationMode: "auto", ZoomMode: "closeup",
			PanRange: [2]float64{-180, 180}, TiltRange: [2]float64{-45, 45}, ZoomRange: [2]float64{1, 10},
			Position:         [3]float64{-52.5, 0, 8},
			GimbalPosition:   map[string]any{"pan": 0.0, "tilt": 0.0, "zoom": 2.0},
			CameraParameters: withTranslation(-52.5, 0, 8),
			Venue:            "ozsports",
		},
		{
			CameraID: "camera6", Role: "r_goal", Status: "ACTIVE", OperationMode: "auto", ZoomMode: "closeup",
			PanRange: [2]float64{-180, 180}, TiltRange: [2]float64{-45, 45}, ZoomRange: [2]float64{1, 10},
			Position:         [3]float64{52.5, 0, 8},
			GimbalPosition:   map[string]any{"pan": 180.0, "tilt": 0.0, "zoom": 2.0},
			CameraParameters: withTranslation(52.5, 0, 8),
			Venue:            "ozsports",
		},
	}
}
