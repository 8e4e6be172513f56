package domain

// Lightning detections form a three-level tree: events reference a group,
// groups reference a flash. Read-only, never cyclic; produced by the injected
// lightning decoder.

// Flash is the coarsest detection unit.
type Flash struct {
	ID     int64
	Lat    float64
	Lon    float64
	Energy float64
}

// Group clusters the events of one flash that lit up together.
type Group struct {
	ID      int64
	FlashID int64
	Lat     float64
	Lon     float64
	Energy  float64
}

// Event is the finest detection unit, a single illuminated pixel group.
type Event struct {
	ID      int64
	GroupID int64
	Lat     float64
	Lon     float64
	Energy  float64
}

// LightningBatch is the decoded contents of one lightning object.
type LightningBatch struct {
	Flashes []Flash
	Groups  []Group
	Events  []Event
}

// Point is one georeferenced detection fed into density binning.
type Point struct {
	Lat    float64
	Lon    float64
	Energy float64
}

// Points returns event-level locations. Some files carry only coarser levels,
// so groups and then flashes are used as fallbacks when events are absent.
func (b *LightningBatch) Points() []Point {
	if b == nil {
		return nil
	}

	if len(b.Events) > 0 {
		pts := make([]Point, len(b.Events))
		for i, e := range b.Events {
			pts[i] = Point{Lat: e.Lat, Lon: e.Lon, Energy: e.Energy}
		}
		return pts
	}
	if len(b.Groups) > 0 {
		pts := make([]Point, len(b.Groups))
		for i, g := range b.Groups {
			pts[i] = Point{Lat: g.Lat, Lon: g.Lon, Energy: g.Energy}
		}
		return pts
	}
	if len(b.Flashes) > 0 {
		pts := make([]Point, len(b.Flashes))
		for i, f := range b.Flashes {
			pts[i] = Point{Lat: f.Lat, Lon: f.Lon, Energy: f.Energy}
		}
		return pts
	}
	return nil
}
