// Package oto plays audio through hajimehoshi/oto. It provides playback
// only; pair it with another backend for capture.
package oto

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/RyanBlaney/pitch-perfect/audio"
)

var (
	// oto allows a single context per process
	ctxOnce   sync.Once
	otoCtx    *oto.Context
	otoErr    error
	otoRate   int
	pollEvery = 10 * time.Millisecond
)

func sharedContext(sampleRate int) (*oto.Context, error) {
	ctxOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(sampleRate, 1, oto.FormatFloat32LE)
		if otoErr == nil {
			<-ready
			otoRate = sampleRate
		}
	})
	if otoErr != nil {
		return nil, fmt.Errorf("oto: new context: %w", otoErr)
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("oto: context already running at %d Hz, requested %d Hz", otoRate, sampleRate)
	}
	return otoCtx, nil
}

// Device is an output-only audio.Device
type Device struct {
	sampleRate int
}

// New returns an oto playback device
func New(sampleRate int) *Device {
	return &Device{sampleRate: sampleRate}
}

// OpenCapture implements audio.Device. oto cannot record.
func (d *Device) OpenCapture(context.Context) (audio.Capture, error) {
	return nil, fmt.Errorf("%w: oto has no capture devices", audio.ErrDeviceNotFound)
}

// OpenPlayback implements audio.Device
func (d *Device) OpenPlayback(ctx context.Context) (audio.Playback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := sharedContext(d.sampleRate)
	if err != nil {
		return nil, err
	}
	return &playback{ctx: c}, nil
}

type playback struct {
	mu     sync.Mutex
	ctx    *oto.Context
	closed bool
}

// Encode converts samples to little-endian float32 PCM
func Encode(samples []float64) []byte {
	buf := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(s)))
	}
	return buf
}

// Play blocks until the player drains or ctx is done
func (p *playback) Play(ctx context.Context, samples []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return audio.ErrClosed
	}
	if len(samples) == 0 {
		return nil
	}

	player := p.ctx.NewPlayer(bytes.NewReader(Encode(samples)))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if err := player.Err(); err != nil {
		return fmt.Errorf("oto: play: %w", err)
	}
	return nil
}

// Close releases the handle; the shared context stays alive for the next
// session
func (p *playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
