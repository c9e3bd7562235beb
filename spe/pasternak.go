package spe

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// WritePasternakShape writes a peak fragment for peak-shape fitting. The
// background level is the fragment minimum; the two rows are the shifted
// error spectrum and the error minus the background-free counts:
//
//	first nk
//	round(err+bg) ...
//	round(err+bg−(seg−bg)) ...
func WritePasternakShape(w io.Writer, first int, segment, errSegment []float64) error {
	if len(segment) == 0 {
		return ErrEmpty
	}
	if len(errSegment) != len(segment) {
		return fmt.Errorf("%w: error fragment has %d channels, spectrum %d", ErrFormat, len(errSegment), len(segment))
	}

	bg := floats.Min(segment)
	shifted := make([]float64, len(segment))
	diff := make([]float64, len(segment))
	for i := range segment {
		shifted[i] = errSegment[i] + bg
		diff[i] = shifted[i] - (segment[i] - bg)
	}
	return writeRows(w, first, shifted, diff)
}

// WritePasternakSinglsh writes a peak fragment together with the straight
// background through its first and last channel.
func WritePasternakSinglsh(w io.Writer, first int, segment []float64) error {
	if len(segment) == 0 {
		return ErrEmpty
	}
	line := make([]float64, len(segment))
	last := len(segment) - 1
	slope := 0.0
	if last > 0 {
		slope = (segment[last] - segment[0]) / float64(last)
	}
	for i := range line {
		line[i] = segment[0] + slope*float64(i)
	}
	return writeRows(w, first, segment, line)
}

func writeRows(w io.Writer, first int, rows ...[]float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", first, len(rows[0]))
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatInt(int64(math.RoundToEven(v)), 10))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("spe: write fragment: %w", err)
	}
	return nil
}
