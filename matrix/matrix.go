package matrix

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is an immutable coincidence matrix. Rows follow the Y axis and
// columns the X axis.
type Matrix struct {
	grid *mat.Dense
}

// New wraps a row-major slice of rows*cols counts. The slice is not copied.
func New(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be > 0: %dx%d", ErrLayout, cols, rows)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrLayout, len(data), cols, rows)
	}
	return &Matrix{grid: mat.NewDense(rows, cols, data)}, nil
}

// Load decodes data according to layout. SkipFirst and SkipLast bytes are
// dropped before the remaining payload is checked against
// DimX*DimY*Element.Size(); a mismatch returns a [*FormatError].
func Load(data []byte, layout Layout) (*Matrix, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	payload := len(data) - layout.SkipFirst - layout.SkipLast
	if payload != layout.PayloadSize() {
		return nil, &FormatError{Want: layout.PayloadSize(), Got: payload}
	}
	data = data[layout.SkipFirst : layout.SkipFirst+payload]

	rows, cols := layout.DimY, layout.DimX
	size := layout.Element.Size()
	order := layout.byteOrder()
	cells := make([]float64, rows*cols)

	for k := 0; k < rows*cols; k++ {
		v := layout.Element.decode(data[k*size:], order)
		if layout.Order == OrderC {
			cells[k] = v
			continue
		}
		// Column-major: k walks down column k/rows.
		r, c := k%rows, k/rows
		cells[r*cols+c] = v
	}

	return &Matrix{grid: mat.NewDense(rows, cols, cells)}, nil
}

// LoadFile reads path and decodes it with [Load].
func LoadFile(path string, layout Layout) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("matrix: read %s: %w", path, err)
	}
	m, err := Load(data, layout)
	if err != nil {
		return nil, fmt.Errorf("matrix: load %s: %w", path, err)
	}
	return m, nil
}

// Encode is the inverse of [Load]: it serializes m with layout, zero-filling
// SkipFirst and SkipLast bytes. The layout dimensions must match m.
func Encode(m *Matrix, layout Layout) ([]byte, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	if rows != layout.DimY || cols != layout.DimX {
		return nil, fmt.Errorf("%w: matrix is %dx%d, layout is %dx%d", ErrLayout, cols, rows, layout.DimX, layout.DimY)
	}

	size := layout.Element.Size()
	order := layout.byteOrder()
	out := make([]byte, layout.SkipFirst+layout.PayloadSize()+layout.SkipLast)
	payload := out[layout.SkipFirst:]

	for k := 0; k < rows*cols; k++ {
		r, c := k/cols, k%cols
		if layout.Order == OrderF {
			r, c = k%rows, k/rows
		}
		layout.Element.encode(payload[k*size:], order, m.grid.At(r, c))
	}
	return out, nil
}

// Dims returns the number of rows (DimY) and columns (DimX).
func (m *Matrix) Dims() (rows, cols int) {
	return m.grid.Dims()
}

// At returns the count at row r, column c.
func (m *Matrix) At(r, c int) float64 {
	return m.grid.At(r, c)
}

// Row returns a copy of row r.
func (m *Matrix) Row(r int) []float64 {
	return mat.Row(nil, r, m.grid)
}

// Transpose returns a new matrix with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	return &Matrix{grid: mat.DenseCopyOf(m.grid.T())}
}

// Equal reports whether m and o have the same shape and identical counts.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	return mat.Equal(m.grid, o.grid)
}

// ProjectX returns the column sums (length DimX).
func (m *Matrix) ProjectX() []float64 {
	rows, cols := m.grid.Dims()
	out := make([]float64, cols)
	for r := 0; r < rows; r++ {
		floats.Add(out, m.grid.RawRowView(r))
	}
	return out
}

// ProjectY returns the row sums (length DimY). This is the ungated spectrum.
func (m *Matrix) ProjectY() []float64 {
	rows, _ := m.grid.Dims()
	out := make([]float64, rows)
	for r := range out {
		out[r] = floats.Sum(m.grid.RawRowView(r))
	}
	return out
}

// ColumnSum sums columns lo..hi inclusive into a vector with one value per
// row.
func (m *Matrix) ColumnSum(lo, hi int) ([]float64, error) {
	rows, cols := m.grid.Dims()
	if lo < 0 || hi >= cols || lo > hi {
		return nil, fmt.Errorf("%w: [%d,%d] with %d columns", ErrOutOfRange, lo, hi, cols)
	}
	out := make([]float64, rows)
	for r := range out {
		out[r] = floats.Sum(m.grid.RawRowView(r)[lo : hi+1])
	}
	return out, nil
}
