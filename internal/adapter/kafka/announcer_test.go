package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteoaustral/goes-frames/internal/domain"
)

func TestSerializeFrameSet(t *testing.T) {
	assembled := time.Date(2025, 2, 25, 20, 15, 0, 0, time.UTC)
	grid := domain.NewDensityGrid(0.5)
	grid.Add(domain.Point{Lat: -33.45, Lon: -70.66, Energy: 2})

	set := domain.FrameSet{
		RunID:       "run-123",
		Region:      domain.ChileContinental,
		Channel:     domain.Channel("C13"),
		WindowStart: time.Date(2025, 2, 25, 19, 15, 0, 0, time.UTC),
		WindowEnd:   assembled,
		Frames: []domain.Frame{
			{
				Scan:    time.Date(2025, 2, 25, 19, 20, 20, 0, time.UTC),
				Channel: domain.Channel("C13"),
				Imagery: domain.CachedBlob{Key: "ABI-key", Path: "/cache/abi.nc", Length: 1024},
				Lightning: []domain.CachedBlob{
					{Key: "GLM-key", Path: "/cache/glm.nc", Length: 256},
				},
				Density:     grid,
				Raster:      &domain.Raster{Width: 2, Height: 2, Values: []float64{1, 2, 3, 4}},
				AssembledAt: assembled,
			},
		},
		AssembledAt: assembled,
	}

	msg, err := serializeFrameSet(set)
	require.NoError(t, err)

	assert.Equal(t, []byte("chile-continental"), msg.Key)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-123"), msg.Headers[0].Value)
	assert.Equal(t, "assembled_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-02-25T20:15:00Z"), msg.Headers[1].Value)

	payload := string(msg.Value)
	assert.Contains(t, payload, `"run_id":"run-123"`)
	assert.Contains(t, payload, `"window_start":"2025-02-25T19:15:00Z"`)
	assert.Contains(t, payload, `"key":"ABI-key"`)
	assert.Contains(t, payload, `"lat_bin":-67`)

	// Rasters stay in memory; the manifest only references cached blobs.
	assert.NotContains(t, payload, "Values")
	assert.NotContains(t, payload, `"raster"`)
}

func TestSerializeFrameSet_EmptyFrames(t *testing.T) {
	set := domain.FrameSet{
		RunID:  "run-empty",
		Region: domain.EasterIsland,
	}

	msg, err := serializeFrameSet(set)
	require.NoError(t, err)

	assert.Equal(t, []byte("easter-island"), msg.Key)
	assert.Contains(t, string(msg.Value), `"frames":null`)
}
