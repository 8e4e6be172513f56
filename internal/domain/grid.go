package domain

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// CellKey addresses one grid cell by integer bin:
// (floor(lat/resolution), floor(lon/resolution)).
type CellKey struct {
	LatBin int
	LonBin int
}

// Cell accumulates the detections mapped to one cell.
type Cell struct {
	Count  int
	Energy float64
}

// DensityGrid is a spatial histogram of lightning detections at a fixed
// resolution in degrees. Derived per frame, recomputed on every assembly,
// never persisted.
type DensityGrid struct {
	Resolution float64
	Cells      map[CellKey]Cell
}

// NewDensityGrid creates an empty grid at the given resolution in degrees.
func NewDensityGrid(resolution float64) *DensityGrid {
	return &DensityGrid{
		Resolution: resolution,
		Cells:      make(map[CellKey]Cell),
	}
}

// BuildDensityGrid reduces detection points to a grid, dropping points outside
// the region before binning. Returns nil when no points were supplied at all:
// an absent grid means no detections fell in the matching interval, while a
// grid with zero cells means detections existed but none inside the region.
func BuildDensityGrid(points []Point, region Region, resolution float64) *DensityGrid {
	if len(points) == 0 {
		return nil
	}

	rect := region.Rect()
	g := NewDensityGrid(resolution)
	for _, p := range points {
		if !rect.ContainsLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)) {
			continue
		}
		g.Add(p)
	}
	return g
}

// Add bins one point into the grid.
func (g *DensityGrid) Add(p Point) {
	k := CellKey{
		LatBin: int(math.Floor(p.Lat / g.Resolution)),
		LonBin: int(math.Floor(p.Lon / g.Resolution)),
	}
	c := g.Cells[k]
	c.Count++
	c.Energy += p.Energy
	g.Cells[k] = c
}

// CellCenter returns the geographic center of a cell.
func (g *DensityGrid) CellCenter(k CellKey) (lat, lon float64) {
	return (float64(k.LatBin) + 0.5) * g.Resolution, (float64(k.LonBin) + 0.5) * g.Resolution
}

// MaxCount returns the highest cell count, used downstream to scale overlay
// markers. Zero for an empty grid.
func (g *DensityGrid) MaxCount() int {
	var maxCount int
	for _, c := range g.Cells {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}
	return maxCount
}

// gridCellJSON is the wire form of one cell; map keys with struct type cannot
// be marshalled directly.
type gridCellJSON struct {
	LatBin int     `json:"lat_bin"`
	LonBin int     `json:"lon_bin"`
	Count  int     `json:"count"`
	Energy float64 `json:"energy"`
}

type gridJSON struct {
	Resolution float64        `json:"resolution"`
	Cells      []gridCellJSON `json:"cells"`
}

// MarshalJSON emits cells as a list sorted by (lat_bin, lon_bin) so output is
// deterministic across runs.
func (g *DensityGrid) MarshalJSON() ([]byte, error) {
	out := gridJSON{
		Resolution: g.Resolution,
		Cells:      make([]gridCellJSON, 0, len(g.Cells)),
	}
	for k, c := range g.Cells {
		out.Cells = append(out.Cells, gridCellJSON{LatBin: k.LatBin, LonBin: k.LonBin, Count: c.Count, Energy: c.Energy})
	}
	sort.Slice(out.Cells, func(i, j int) bool {
		if out.Cells[i].LatBin != out.Cells[j].LatBin {
			return out.Cells[i].LatBin < out.Cells[j].LatBin
		}
		return out.Cells[i].LonBin < out.Cells[j].LonBin
	})
	return json.Marshal(out)
}

// UnmarshalJSON restores a grid from its wire form.
func (g *DensityGrid) UnmarshalJSON(data []byte) error {
	var in gridJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	g.Resolution = in.Resolution
	g.Cells = make(map[CellKey]Cell, len(in.Cells))
	for _, c := range in.Cells {
		g.Cells[CellKey{LatBin: c.LatBin, LonBin: c.LonBin}] = Cell{Count: c.Count, Energy: c.Energy}
	}
	return nil
}
