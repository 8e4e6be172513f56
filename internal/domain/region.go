package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// Region is the geographic bounding domain selected for display. Immutable;
// chosen by the caller, never mutated by the pipeline.
type Region struct {
	Name   string  `json:"name"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
}

// Fixed display regions.
var (
	ChileContinental = Region{Name: "chile-continental", MinLon: -85, MaxLon: -60, MinLat: -60, MaxLat: -15}
	ChileCentral     = Region{Name: "chile-central", MinLon: -75, MaxLon: -67, MinLat: -35, MaxLat: -30}
	EasterIsland     = Region{Name: "easter-island", MinLon: -120, MaxLon: -103, MinLat: -35, MaxLat: -20}
)

// PresetRegion looks up a fixed region by name.
func PresetRegion(name string) (Region, bool) {
	switch name {
	case ChileContinental.Name:
		return ChileContinental, true
	case ChileCentral.Name:
		return ChileCentral, true
	case EasterIsland.Name:
		return EasterIsland, true
	}
	return Region{}, false
}

// PresetNames lists the fixed region names, for error messages.
func PresetNames() []string {
	return []string{ChileContinental.Name, ChileCentral.Name, EasterIsland.Name}
}

// ParseBBox parses a manual bounding box "minLon,maxLon,minLat,maxLat"
// (the same field order the region presets use).
func ParseBBox(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("bounding box %q: want 4 comma-separated values minLon,maxLon,minLat,maxLat", s)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Region{}, fmt.Errorf("bounding box %q: field %d: %w", s, i+1, err)
		}
		vals[i] = v
	}

	r := Region{Name: "custom", MinLon: vals[0], MaxLon: vals[1], MinLat: vals[2], MaxLat: vals[3]}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// Validate checks coordinate ranges and axis ordering.
func (r Region) Validate() error {
	if r.MinLat < -90 || r.MaxLat > 90 {
		return fmt.Errorf("region %s: latitude out of [-90, 90]", r.Name)
	}
	if r.MinLon < -180 || r.MaxLon > 180 {
		return fmt.Errorf("region %s: longitude out of [-180, 180]", r.Name)
	}
	if r.MinLat >= r.MaxLat {
		return fmt.Errorf("region %s: min latitude %g not below max %g", r.Name, r.MinLat, r.MaxLat)
	}
	if r.MinLon >= r.MaxLon {
		return fmt.Errorf("region %s: min longitude %g not below max %g", r.Name, r.MinLon, r.MaxLon)
	}
	return nil
}

// Rect returns the region as an s2 latitude/longitude rectangle.
func (r Region) Rect() s2.Rect {
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(r.MinLat, r.MinLon))
	return rect.AddPoint(s2.LatLngFromDegrees(r.MaxLat, r.MaxLon))
}

// Contains reports whether the coordinate lies within the region.
func (r Region) Contains(lat, lon float64) bool {
	return r.Rect().ContainsLatLng(s2.LatLngFromDegrees(lat, lon))
}
