// Package audio defines the capture and playback collaborators used by the
// detection and transfer pipelines. Backends live in subpackages.
package audio

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotFound is returned when a named input or output device does
	// not exist on this system
	ErrDeviceNotFound = errors.New("audio: device not found")

	// ErrClosed is returned by operations on a released capture or playback
	ErrClosed = errors.New("audio: device closed")
)

// Capture records mono frames from an input device
type Capture interface {
	// Record blocks until n samples have been captured or ctx is done
	Record(ctx context.Context, n int) ([]float64, error)
	Close() error
}

// Playback plays mono samples on an output device
type Playback interface {
	// Play blocks until samples have been played or ctx is done
	Play(ctx context.Context, samples []float64) error
	Close() error
}

// Device opens capture and playback handles. Each handle is acquired for one
// listening session and released with Close.
type Device interface {
	OpenCapture(ctx context.Context) (Capture, error)
	OpenPlayback(ctx context.Context) (Playback, error)
}

// Open acquires both a capture and a playback handle from d. If playback
// cannot be opened the capture is released before returning.
func Open(ctx context.Context, d Device) (Capture, Playback, error) {
	capture, err := d.OpenCapture(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("audio: open capture: %w", err)
	}

	playback, err := d.OpenPlayback(ctx)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("audio: open playback: %w", err), capture.Close())
	}

	return capture, playback, nil
}

// Pair combines the input side of one device with the output side of
// another, e.g. a PortAudio microphone with oto playback.
type Pair struct {
	Input  Device
	Output Device
}

// OpenCapture implements Device
func (p Pair) OpenCapture(ctx context.Context) (Capture, error) {
	return p.Input.OpenCapture(ctx)
}

// OpenPlayback implements Device
func (p Pair) OpenPlayback(ctx context.Context) (Playback, error) {
	return p.Output.OpenPlayback(ctx)
}

// Config selects devices and stream geometry
type Config struct {
	SampleRate      int
	FramesPerBuffer int
	InputDevice     string // Empty selects the system default
	OutputDevice    string // Empty selects the system default
}
