package file

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/RyanBlaney/pitch-perfect/audio"
)

func encode(samples []float64) []byte {
	out := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(s))
	}
	return out
}

func TestDecodePCM(t *testing.T) {
	want := []float64{0, 0.5, -0.25, 1}
	got, err := DecodePCM(encode(want))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, want) {
		t.Errorf("DecodePCM = %v, want %v", got, want)
	}

	if _, err := DecodePCM(make([]byte, 12)); err == nil {
		t.Error("expected error for truncated sample")
	}
}

func TestCaptureFramesThenEOF(t *testing.T) {
	d := NewFromSamples([]float64{1, 2, 3, 4, 5}, 8000, false)
	ctx := context.Background()

	c, err := d.OpenCapture(ctx)
	if err != nil {
		t.Fatal(err)
	}

	first, err := c.Record(ctx, 3)
	if err != nil || !slices.Equal(first, []float64{1, 2, 3}) {
		t.Fatalf("first frame = %v, %v", first, err)
	}
	last, err := c.Record(ctx, 3)
	if err != nil || !slices.Equal(last, []float64{4, 5, 0}) {
		t.Fatalf("last frame = %v, %v; want zero padded", last, err)
	}
	if _, err := c.Record(ctx, 3); !errors.Is(err, io.EOF) || !IsEOF(err) {
		t.Errorf("Record past end = %v, want io.EOF", err)
	}
}

func TestCaptureResumesAcrossOpens(t *testing.T) {
	d := NewFromSamples([]float64{1, 2, 3, 4}, 8000, false)
	ctx := context.Background()

	c, _ := d.OpenCapture(ctx)
	if _, err := c.Record(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Record(ctx, 2); !errors.Is(err, audio.ErrClosed) {
		t.Errorf("Record after Close = %v, want ErrClosed", err)
	}

	c2, _ := d.OpenCapture(ctx)
	frame, err := c2.Record(ctx, 2)
	if err != nil || !slices.Equal(frame, []float64{3, 4}) {
		t.Errorf("reopened capture = %v, %v; want [3 4]", frame, err)
	}
	if d.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining())
	}
}

func TestCaptureRealtimeHonoursContext(t *testing.T) {
	// One second per frame at 8 kHz
	d := NewFromSamples(make([]float64, 16000), 8000, true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c, _ := d.OpenCapture(ctx)
	start := time.Now()
	if _, err := c.Record(ctx, 8000); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Record = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Record did not return on cancellation")
	}
}

func TestOpenCaptureMissingFile(t *testing.T) {
	d := New(Config{Path: filepath.Join(t.TempDir(), "missing.wav"), SampleRate: 44100}, nil)
	if _, err := d.OpenCapture(context.Background()); !errors.Is(err, audio.ErrDeviceNotFound) {
		t.Errorf("OpenCapture = %v, want ErrDeviceNotFound", err)
	}
}

func TestOpenPlaybackUnsupported(t *testing.T) {
	d := NewFromSamples(nil, 8000, false)
	if _, err := d.OpenPlayback(context.Background()); !errors.Is(err, audio.ErrDeviceNotFound) {
		t.Errorf("OpenPlayback = %v, want ErrDeviceNotFound", err)
	}
}

func TestArgs(t *testing.T) {
	d := New(Config{Path: "melody.flac", SampleRate: 22050}, nil)
	args := d.Args()

	for _, want := range [][]string{{"-i", "melody.flac"}, {"-ac", "1"}, {"-ar", "22050"}, {"-f", "f64le"}} {
		i := slices.Index(args, want[0])
		if i < 0 || i+1 >= len(args) || args[i+1] != want[1] {
			t.Errorf("args %v missing %s %s", args, want[0], want[1])
		}
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("output should be stdout, got %q", args[len(args)-1])
	}
}

func TestDecodeTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script in place of ffmpeg")
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "melody.wav")
	if err := os.WriteFile(input, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	slow := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(slow, []byte("#!/bin/sh\nexec sleep 10\n"), 0o700); err != nil {
		t.Fatal(err)
	}

	d := New(Config{Path: input, SampleRate: 8000, FFmpegPath: slow, Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	if _, err := d.Decode(context.Background()); err == nil {
		t.Fatal("expected decode to fail once the timeout expires")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Decode took %v, timeout was not applied", elapsed)
	}
}
