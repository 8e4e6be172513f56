// Package store holds the most recently assembled frame set for the HTTP
// surface and anyone else who wants the current state.
package store

import (
	"sync"

	"github.com/meteoaustral/goes-frames/internal/domain"
)

// Frames is a concurrency-safe holder for the latest finished set. Each
// refresh replaces the whole set; readers receive a snapshot they must treat
// as read-only.
type Frames struct {
	mu  sync.RWMutex
	set *domain.FrameSet
}

func NewFrames() *Frames {
	return &Frames{}
}

// Put replaces the published set.
func (s *Frames) Put(set domain.FrameSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = &set
}

// Latest returns the last published set, or domain.ErrNoFrames before the
// first successful refresh.
func (s *Frames) Latest() (domain.FrameSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return domain.FrameSet{}, domain.ErrNoFrames
	}
	return *s.set, nil
}
