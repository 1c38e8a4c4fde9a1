package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticProviderShape(t *testing.T) {
	p := NewStaticProvider()

	assert.Equal(t, "ozsports", p.VenueID())

	markers := p.PitchMarkers()
	assert.Len(t, markers, 20)
	assert.Contains(t, markers, "center_spot")

	cameras := p.CameraConfigs()
	assert.Len(t, cameras, 6)

	seen := map[string]bool{}
	for _, c := range cameras {
		assert.NotEmpty(t, c.CameraID)
		assert.NotEmpty(t, c.Role)
		assert.Equal(t, "ozsports", c.Venue)
		assert.False(t, seen[c.CameraID], "camera IDs must be unique")
		seen[c.CameraID] = true
	}
}
