// Package playback keeps an audio clock and a viewport in step: the viewport
// follows the play-head while audio plays, and seeks never move the viewport.
package playback

import (
	"math"
	"sync"
	"time"
)

// Clock is the audio player as seen by the canvas. Times are in seconds.
type Clock interface {
	Play()
	Pause()
	Seek(t float64)
	CurrentTime() float64
	IsPlaying() bool
	Loop() bool
	SetLoop(loop bool)
}

// SimulatedClock advances with wall time and plays nothing. The terminal
// front-end and the tests use it in place of an audio device.
type SimulatedClock struct {
	mu      sync.Mutex
	now     func() time.Time
	origin  time.Time // wall time when base was last fixed
	base    float64   // media time at origin
	speed   float64
	playing bool
	loop    bool
}

// NewSimulatedClock creates a paused clock at zero. A nil now uses time.Now.
func NewSimulatedClock(speed float64, now func() time.Time) *SimulatedClock {
	if now == nil {
		now = time.Now
	}
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = 1
	}
	return &SimulatedClock{now: now, speed: speed}
}

// current must be called with mu held.
func (c *SimulatedClock) current() float64 {
	if !c.playing {
		return c.base
	}
	return c.base + c.now().Sub(c.origin).Seconds()*c.speed
}

func (c *SimulatedClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.origin = c.now()
	c.playing = true
}

func (c *SimulatedClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.base = c.current()
	c.playing = false
}

func (c *SimulatedClock) Seek(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = t
	c.origin = c.now()
}

func (c *SimulatedClock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current()
}

func (c *SimulatedClock) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *SimulatedClock) Loop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop
}

func (c *SimulatedClock) SetLoop(loop bool) {
	c.mu.Lock()
	c.loop = loop
	c.mu.Unlock()
}

// Speed returns the playback rate.
func (c *SimulatedClock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed changes the playback rate without a jump in media time.
func (c *SimulatedClock) SetSpeed(speed float64) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.current()
	c.origin = c.now()
	c.speed = speed
}
