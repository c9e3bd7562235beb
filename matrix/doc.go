// Package matrix decodes and holds 2D coincidence matrices.
//
// A [Matrix] is an immutable dense grid of counts. Columns run along the X
// (gate) axis and rows along the Y axis, so gating a band of columns yields a
// spectrum with one value per row.
//
// # Decoding
//
// Raw matrix files are flat arrays of fixed-size cells. [Load] decodes them
// according to a [Layout] that fixes the dimensions, the cell type, the byte
// order, the storage order and how many header/trailer bytes to drop:
//
//	layout := matrix.Layout{
//		DimX: 4096, DimY: 4096,
//		Order:     matrix.OrderC,
//		Element:   matrix.Uint16,
//		ByteOrder: binary.LittleEndian,
//	}
//	m, err := matrix.LoadFile("run42.mat", layout)
//
// Known legacy layouts are kept in a [Registry] keyed by file extension
// (`mat` and `m4b` are built in); more can be read from a type table with
// [ParseFormats].
//
// # Projections
//
// [Matrix.ProjectX] sums every column, [Matrix.ProjectY] sums every row, and
// [Matrix.ColumnSum] sums a band of columns. [Matrix.Transpose] returns a new
// matrix with the axes swapped.
package matrix
