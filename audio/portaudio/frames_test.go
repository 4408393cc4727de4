package portaudio

import (
	"context"
	"errors"
	"testing"
)

// counter fills buffers with consecutive sample numbers
type counter struct {
	buf   []float32
	next  float32
	reads int
	err   error
}

func (c *counter) fill() error {
	if c.err != nil {
		return c.err
	}
	c.reads++
	for i := range c.buf {
		c.buf[i] = c.next
		c.next++
	}
	return nil
}

func newCounter(size int) (*counter, *frameReader) {
	c := &counter{buf: make([]float32, size)}
	return c, &frameReader{buf: c.buf, fill: c.fill}
}

func TestFrameReader_FramesAreContiguous(t *testing.T) {
	tests := []struct {
		name   string
		buffer int
		frame  int
	}{
		{"frame longer than buffer", 1024, 2756},
		{"frame shorter than buffer", 1024, 300},
		{"frame equal to buffer", 512, 512},
		{"detect geometry", 1024, 11025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r := newCounter(tt.buffer)
			want := float64(0)
			for range 5 {
				frame, err := r.next(context.Background(), tt.frame)
				if err != nil {
					t.Fatal(err)
				}
				if len(frame) != tt.frame {
					t.Fatalf("frame length = %d, want %d", len(frame), tt.frame)
				}
				for i, s := range frame {
					if s != want {
						t.Fatalf("sample %d = %v, want %v", i, s, want)
					}
					want++
				}
			}

			// Every buffer read is used except the unread tail of the last
			if used := c.reads * tt.buffer; used-int(want) >= tt.buffer {
				t.Errorf("%d reads for %v samples", c.reads, want)
			}
		})
	}
}

func TestFrameReader_Errors(t *testing.T) {
	c, r := newCounter(8)
	c.err = errors.New("stream stopped")
	if _, err := r.next(context.Background(), 4); !errors.Is(err, c.err) {
		t.Errorf("next = %v, want fill error", err)
	}

	c.err = nil
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.next(ctx, 4); !errors.Is(err, context.Canceled) {
		t.Errorf("next = %v, want context.Canceled", err)
	}
	if c.reads != 0 {
		t.Errorf("cancelled read filled %d buffers", c.reads)
	}
}
