package domain

import "time"

// Frame is one temporally aligned unit of output: a single imagery scan plus
// every lightning product whose scan start falls inside the frame's matching
// interval, reduced to a density grid.
type Frame struct {
	Scan        time.Time    `json:"scan"`
	Channel     Channel      `json:"channel"`
	Imagery     CachedBlob   `json:"imagery"`
	Lightning   []CachedBlob `json:"lightning,omitempty"`
	Density     *DensityGrid `json:"density,omitempty"`
	Raster      *Raster      `json:"-"`
	AssembledAt time.Time    `json:"assembled_at"`
}

// FrameSet is the product of one assembly run: frames in ascending scan order
// with no duplicate scan timestamps, covering the trailing window that ended
// at WindowEnd.
type FrameSet struct {
	RunID       string    `json:"run_id"`
	Region      Region    `json:"region"`
	Channel     Channel   `json:"channel"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Frames      []Frame   `json:"frames"`
	AssembledAt time.Time `json:"assembled_at"`
}

// Scans lists the frame scan timestamps in set order.
func (s FrameSet) Scans() []time.Time {
	out := make([]time.Time, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.Scan
	}
	return out
}
