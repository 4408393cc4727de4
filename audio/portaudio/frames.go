package portaudio

import "context"

// frameReader cuts a stream delivered in fixed-size buffers into frames of
// any length. Samples of the last buffer not used by one frame open the
// next, so consecutive frames are contiguous.
type frameReader struct {
	buf     []float32
	fill    func() error // Overwrites buf with the next block
	pending []float64
}

func (r *frameReader) next(ctx context.Context, n int) ([]float64, error) {
	out := make([]float64, 0, n)

	take := min(len(r.pending), n)
	out = append(out, r.pending[:take]...)
	r.pending = r.pending[take:]

	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.fill(); err != nil {
			return nil, err
		}

		take := min(len(r.buf), n-len(out))
		for _, s := range r.buf[:take] {
			out = append(out, float64(s))
		}
		r.pending = r.pending[:0]
		for _, s := range r.buf[take:] {
			r.pending = append(r.pending, float64(s))
		}
	}
	return out, nil
}
