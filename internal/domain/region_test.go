package domain

import (
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetRegion(t *testing.T) {
	t.Run("known names", func(t *testing.T) {
		for _, name := range PresetNames() {
			r, ok := PresetRegion(name)
			assert.True(t, ok, name)
			assert.Equal(t, name, r.Name)
			assert.NoError(t, r.Validate())
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := PresetRegion("patagonia")
		assert.False(t, ok)
	})

	t.Run("continental bounds", func(t *testing.T) {
		r, ok := PresetRegion("chile-continental")
		require.True(t, ok)
		assert.Equal(t, -85.0, r.MinLon)
		assert.Equal(t, -60.0, r.MaxLon)
		assert.Equal(t, -60.0, r.MinLat)
		assert.Equal(t, -15.0, r.MaxLat)
	})
}

func TestParseBBox(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r, err := ParseBBox("-75,-67,-35,-30")

		require.NoError(t, err)
		assert.Equal(t, "custom", r.Name)
		assert.Equal(t, Region{Name: "custom", MinLon: -75, MaxLon: -67, MinLat: -35, MaxLat: -30}, r)
	})

	t.Run("tolerates spaces", func(t *testing.T) {
		r, err := ParseBBox(" -75, -67, -35, -30 ")

		require.NoError(t, err)
		assert.Equal(t, -75.0, r.MinLon)
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"too few fields", "-75,-67,-35", "want 4 comma-separated values"},
		{"too many fields", "-75,-67,-35,-30,-5", "want 4 comma-separated values"},
		{"non-numeric field", "-75,west,-35,-30", "field 2"},
		{"latitude out of range", "-75,-67,-95,-30", "latitude out of [-90, 90]"},
		{"longitude out of range", "-190,-67,-35,-30", "longitude out of [-180, 180]"},
		{"inverted latitudes", "-75,-67,-30,-35", "not below max"},
		{"inverted longitudes", "-67,-75,-35,-30", "not below max"},
		{"empty", "", "want 4 comma-separated values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBBox(tt.input)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegionContains(t *testing.T) {
	central := ChileCentral

	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"santiago", -33.45, -70.66, true},
		{"valparaiso", -33.05, -71.61, true},
		{"min corner", -35, -75, true},
		{"max corner", -30, -67, true},
		{"north of region", -29.9, -70, false},
		{"south of region", -35.1, -70, false},
		{"east of region", -33, -66.9, false},
		{"west of region", -33, -75.1, false},
		{"antipode", 33, 110, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, central.Contains(tt.lat, tt.lon))
		})
	}
}

func TestRegionRect(t *testing.T) {
	rect := EasterIsland.Rect()

	assert.False(t, rect.IsEmpty())
	assert.InDelta(t, -35, rect.Lo().Lat.Degrees(), 1e-9)
	assert.InDelta(t, -103, rect.Hi().Lng.Degrees(), 1e-9)
	assert.True(t, rect.ContainsLatLng(s2.LatLngFromDegrees(-27.1, -109.35))) // Rapa Nui
	assert.False(t, rect.ContainsLatLng(s2.LatLngFromDegrees(-33.45, -70.66)))
}
