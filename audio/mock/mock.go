// Package mock provides in-memory implementations of the [audio.Device],
// [audio.Capture] and [audio.Playback] interfaces for use in unit tests.
//
// All mocks are safe for concurrent use. They record what was captured,
// played and released so tests can assert on device lifecycles.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/RyanBlaney/pitch-perfect/audio"
)

// ─── Capture ──────────────────────────────────────────────────────────────────

// Capture replays scripted frames. Once Frames is exhausted Record returns
// Err, or io.EOF when Err is nil.
type Capture struct {
	mu sync.Mutex

	// Frames are returned by successive Record calls, in order
	Frames [][]float64

	// Err is returned after the script runs out
	Err error

	// OnRecord, if set, runs before every Record with the call index
	OnRecord func(call int)

	// Requested records the n of every Record call
	Requested []int

	// CloseCount records how many times Close was called
	CloseCount int
}

// Record implements [audio.Capture]
func (c *Capture) Record(ctx context.Context, n int) ([]float64, error) {
	c.mu.Lock()
	call := len(c.Requested)
	c.Requested = append(c.Requested, n)
	hook := c.OnRecord
	c.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CloseCount > 0 {
		return nil, audio.ErrClosed
	}
	if len(c.Frames) == 0 {
		if c.Err != nil {
			return nil, c.Err
		}
		return nil, io.EOF
	}
	frame := c.Frames[0]
	c.Frames = c.Frames[1:]
	return frame, nil
}

// Close implements [audio.Capture]
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CloseCount++
	return nil
}

// Calls returns the number of Record calls so far
func (c *Capture) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Requested)
}

// ─── Playback ─────────────────────────────────────────────────────────────────

// Playback records every buffer passed to Play
type Playback struct {
	mu sync.Mutex

	// PlayError is returned by Play
	PlayError error

	// Played holds a copy of each Play call's samples
	Played [][]float64

	// CloseCount records how many times Close was called
	CloseCount int
}

// Play implements [audio.Playback]
func (p *Playback) Play(ctx context.Context, samples []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Played = append(p.Played, append([]float64(nil), samples...))
	return p.PlayError
}

// Close implements [audio.Playback]
func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CloseCount++
	return nil
}

// Calls returns a copy of everything played so far
func (p *Playback) Calls() [][]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]float64(nil), p.Played...)
}

// ─── Device ───────────────────────────────────────────────────────────────────

// Device hands out scripted handles. The i-th OpenCapture returns
// Captures[i]; once the list is exhausted it returns CaptureError or
// io.EOF. Every OpenPlayback returns Playback.
type Device struct {
	mu sync.Mutex

	Captures []*Capture
	Playback *Playback

	// CaptureError and PlaybackError fail the corresponding Open calls
	CaptureError  error
	PlaybackError error

	// CaptureOpens and PlaybackOpens count successful and failed opens
	CaptureOpens  int
	PlaybackOpens int
}

// OpenCapture implements [audio.Device]
func (d *Device) OpenCapture(ctx context.Context) (audio.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.CaptureOpens
	d.CaptureOpens++
	if d.CaptureError != nil {
		return nil, d.CaptureError
	}
	if i >= len(d.Captures) {
		return nil, io.EOF
	}
	return d.Captures[i], nil
}

// OpenPlayback implements [audio.Device]
func (d *Device) OpenPlayback(ctx context.Context) (audio.Playback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.PlaybackOpens++
	if d.PlaybackError != nil {
		return nil, d.PlaybackError
	}
	if d.Playback == nil {
		d.Playback = &Playback{}
	}
	return d.Playback, nil
}
