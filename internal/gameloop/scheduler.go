// Package gameloop turns irregular frame callbacks into a fixed logical
// tick rate.
package gameloop

import (
	"context"
	"math"
	"sync"
	"time"
)

// resyncFrames is how many intervals late a frame may arrive before the
// scheduler drops the backlog instead of catching up.
const resyncFrames = 5

// StepFunc runs one logical tick. Returning false stops the scheduler.
type StepFunc func(tick int64) bool

// Scheduler runs at most one step per frame callback and at most rate steps
// per second of frame time.
type Scheduler struct {
	mu       sync.Mutex
	interval float64
	step     StepFunc

	started bool
	prev    float64
	tick    int64
	stopped bool
}

// NewScheduler returns a scheduler for rate ticks per second.
func NewScheduler(rate int, step StepFunc) *Scheduler {
	if rate <= 0 {
		rate = 30
	}
	return &Scheduler{
		interval: math.Round(1000 / float64(rate)),
		step:     step,
	}
}

// Frame is called once per rendered frame with the frame time in
// milliseconds. The first call steps immediately. Later calls step only
// once the next interval is due, and a frame far past due resynchronizes to
// its own time. Reports whether a step ran.
func (s *Scheduler) Frame(nowMillis float64) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}

	if !s.started {
		s.started = true
		s.prev = nowMillis
	} else {
		next := s.prev + s.interval
		if nowMillis < next {
			s.mu.Unlock()
			return false
		}
		if nowMillis > s.prev+resyncFrames*s.interval {
			s.prev = nowMillis
		} else {
			s.prev = next
		}
	}
	s.tick++
	tick := s.tick
	s.mu.Unlock()

	if !s.step(tick) {
		s.Stop()
	}
	return true
}

// Stop cancels the scheduler. It takes effect at the next frame.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Stopped reports whether the scheduler has been cancelled.
func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Tick returns the number of steps run so far.
func (s *Scheduler) Tick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Run feeds frames to the scheduler until ctx is done, the frame channel
// closes, or the scheduler stops.
func (s *Scheduler) Run(ctx context.Context, frames <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-frames:
			if !ok {
				return nil
			}
			s.Frame(float64(t.UnixNano()) / float64(time.Millisecond))
			if s.Stopped() {
				return nil
			}
		}
	}
}
