// Package domain models GOES geostationary satellite imagery and lightning data.
//
// # Data Source
//
// Imagery and lightning objects live in a public, anonymously readable object
// store (default https://noaa-goes19.s3.amazonaws.com). Two product families
// are consumed:
//
//	ABI-L2-CMIPF  Cloud and Moisture Imagery, full disk. One object per scan
//	              cycle per channel, roughly every 10 minutes.
//	GLM-L2-LCFA   Geostationary Lightning Mapper flash/group/event data.
//	              One object roughly every 20 seconds.
//
// # Key Grammar
//
// Object keys follow the GOES bucket convention:
//
//	<product>/<YYYY>/<DDD>/<HH>/OR_<detail>_<sat>_s<start>_e<end>_c<created>.nc
//
// where DDD is the day of year and the three stamp fields are 14-digit
// timestamps in the form YYYYDDDHHMMSST (T = tenths of a second). Example:
//
//	ABI-L2-CMIPF/2025/056/20/OR_ABI-L2-CMIPF-M6C13_G19_s20250562010204_e20250562019512_c20250562019587.nc
//
// The imagery detail field encodes the scan mode and channel ("M6C13" = mode 6,
// channel 13). The start stamp identifies the scan cycle; the creation stamp
// distinguishes reprocessed uploads of the same scan. Parsing is strict:
// a key that does not match the grammar is rejected with [ErrMalformedKey],
// never guessed, because frame ordering depends on these stamps.
//
// # Channels
//
// ABI channels are C01 through C16. The ones used operationally here:
//
//	C02  visible red (0.64 µm), daytime detail
//	C08  upper-level water vapor (6.2 µm)
//	C13  clean longwave infrared (10.3 µm), the default
//
// # Temporal Alignment
//
// Imagery scans arrive on a ~10 minute cadence, lightning objects on a ~20
// second cadence. A lightning object belongs to the frame at scan time s when
// its start stamp falls in the half-open interval
//
//	[s - w/2, s + w/2)
//
// where w is the configured matching interval (default: the scan cadence).
// Absence of lightning in the interval is a normal state, represented by a
// nil density grid, not an error.
//
// # Density Grid
//
// Lightning point locations are reduced to a spatial histogram over the
// selected region: cells are resolution-degree bins keyed by
// (floor(lat/res), floor(lon/res)), each holding a detection count and summed
// event energy. Grids are derived per frame and never persisted. The rendering
// layer sizes overlay markers from per-cell density.
//
// # Regions
//
// Display regions are fixed presets (Chile continental, Chile central,
// Easter Island) or a caller-supplied bounding box. Containment tests use
// s2 rects built from the box corners.
package domain
