package spe

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// TextExt is the extension of text spectra. The matching error spectrum is
// written to base + "err" + TextExt.
const TextExt = ".txt"

// WriteText writes one value per line.
func WriteText(w io.Writer, data []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range data {
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("spe: write text: %w", err)
	}
	return nil
}

// ReadText parses whitespace-separated values.
func ReadText(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var out []float64
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %w", ErrFormat, len(out), err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("spe: read text: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}
