package domain

import "context"

// Raster is decoded imagery for one scan, row-major from the north-west
// corner.
type Raster struct {
	Width  int
	Height int
	Values []float64
}

// ImageryDecoder turns a cached CMIP payload into a raster. NetCDF parsing
// lives behind this seam and is supplied by the caller; the pipeline runs
// without one and leaves Frame.Raster unset. Unparseable payloads fail with
// errors wrapping ErrDecodeFailed.
type ImageryDecoder interface {
	DecodeImagery(ctx context.Context, blob CachedBlob) (*Raster, error)
}

// LightningDecoder extracts detection points from a cached LCFA payload.
// Implementations should populate whichever of flashes, groups and events the
// payload carries; [LightningBatch.Points] picks the finest populated level.
// Unparseable payloads fail with errors wrapping ErrDecodeFailed.
type LightningDecoder interface {
	DecodeLightning(ctx context.Context, blob CachedBlob) (*LightningBatch, error)
}
