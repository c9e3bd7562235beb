package peakfind

import (
	"context"
	"errors"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// ErrEmptySpectrum is returned for a spectrum without channels.
var ErrEmptySpectrum = errors.New("peakfind: empty spectrum")

// Find returns the channels of the peaks found in spectrum, ascending. It
// returns ctx.Err() without a partial result when ctx is cancelled before
// the transform completes.
func Find(ctx context.Context, spectrum []float64, opts ...Option) ([]int, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if len(spectrum) == 0 {
		return nil, ErrEmptySpectrum
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	widths := cfg.widths()
	cwt, err := transform(ctx, spectrum, widths, cfg.concurrency)
	if err != nil {
		return nil, err
	}

	maxDist := make([]float64, len(widths))
	for i, w := range widths {
		maxDist[i] = w / 4
	}
	lines := ridgeLines(cwt, maxDist, int(math.Ceil(widths[0])))

	noise := noiseFloor(cwt[0], cfg.noisePercentile)
	minLength := int(math.Ceil(float64(len(cwt)) / 4))

	var peaks []int
	for _, l := range lines {
		if len(l.rows) < minLength {
			continue
		}
		col := l.cols[0]
		snr := math.Abs(cwt[l.rows[0]][col] / noise[col])
		if !(snr >= cfg.minSNR) {
			continue
		}
		peaks = append(peaks, col)
	}
	slices.Sort(peaks)
	return peaks, nil
}

// Energies converts peak channels to energies with keVPerChannel.
func Energies(peaks []int, keVPerChannel float64) []float64 {
	out := make([]float64, len(peaks))
	for i, p := range peaks {
		out[i] = float64(p) * keVPerChannel
	}
	return out
}

// transform computes one wavelet response row per width. Widths are
// processed concurrently, at most limit at a time when limit > 0.
func transform(ctx context.Context, data, widths []float64, limit int) ([][]float64, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	out := make([][]float64, len(widths))
	for i, w := range widths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			points := min(int(10*w), len(data))
			row, err := convolveSame(data, Ricker(points, w))
			if err != nil {
				return err
			}
			out[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation after the last width finished still aborts.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ridge is a chain of local maxima across widths. After ridgeLines returns,
// rows ascend so index 0 is the smallest width on the ridge.
type ridge struct {
	rows []int
	cols []int
	gap  int
}

// ridgeLines walks from the largest width with any maximum down to the
// smallest, attaching every maximum to the nearest ridge within maxDist of
// the ridge's last column. A ridge that misses more than gapThresh widths
// in a row is closed.
func ridgeLines(cwt [][]float64, maxDist []float64, gapThresh int) []*ridge {
	maxima := make([][]int, len(cwt))
	start := -1
	for i, row := range cwt {
		maxima[i] = relativeMaxima(row)
		if len(maxima[i]) > 0 {
			start = i
		}
	}
	if start < 0 {
		return nil
	}

	active := make([]*ridge, 0, len(maxima[start]))
	for _, col := range maxima[start] {
		active = append(active, &ridge{rows: []int{start}, cols: []int{col}})
	}
	var closed []*ridge

	for row := start - 1; row >= 0; row-- {
		for _, l := range active {
			l.gap++
		}
		prev := make([]int, len(active))
		for i, l := range active {
			prev[i] = l.cols[len(l.cols)-1]
		}

		for _, col := range maxima[row] {
			nearest, dist := -1, 0
			for i, p := range prev {
				d := col - p
				if d < 0 {
					d = -d
				}
				if nearest < 0 || d < dist {
					nearest, dist = i, d
				}
			}
			if nearest >= 0 && float64(dist) <= maxDist[row] {
				l := active[nearest]
				l.rows = append(l.rows, row)
				l.cols = append(l.cols, col)
				l.gap = 0
				continue
			}
			active = append(active, &ridge{rows: []int{row}, cols: []int{col}})
		}

		for i := len(active) - 1; i >= 0; i-- {
			if active[i].gap > gapThresh {
				closed = append(closed, active[i])
				active = slices.Delete(active, i, i+1)
			}
		}
	}

	lines := append(closed, active...)
	for _, l := range lines {
		slices.Reverse(l.rows)
		slices.Reverse(l.cols)
	}
	return lines
}

// relativeMaxima returns the indices strictly greater than both neighbours.
// The first and last samples never qualify.
func relativeMaxima(row []float64) []int {
	var out []int
	for i := 1; i < len(row)-1; i++ {
		if row[i] > row[i-1] && row[i] > row[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// noiseFloor returns, for every channel, the p-th percentile of row over a
// window of ceil(len/20) channels around it.
func noiseFloor(row []float64, p float64) []float64 {
	n := len(row)
	window := int(math.Ceil(float64(n) / 20))
	half, odd := window/2, window%2

	out := make([]float64, n)
	buf := make([]float64, 0, window)
	for i := range row {
		lo := max(i-half, 0)
		hi := min(i+half+odd, n)
		buf = append(buf[:0], row[lo:hi]...)
		out[i] = percentile(buf, p)
	}
	return out
}

// percentile sorts values in place and interpolates linearly between the
// two ranks around p/100·(len−1).
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	slices.Sort(values)
	idx := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	return values[lo] + (values[hi]-values[lo])*(idx-float64(lo))
}
