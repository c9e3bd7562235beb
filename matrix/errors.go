package matrix

import (
	"errors"
	"fmt"
)

// Errors returned by matrix functions.
var (
	ErrFormat      = errors.New("matrix: payload does not match layout")
	ErrLayout      = errors.New("matrix: invalid layout")
	ErrOutOfRange  = errors.New("matrix: column range out of bounds")
	ErrFormatTable = errors.New("matrix: malformed format table")
)

// FormatError reports a byte length mismatch between a payload and the
// layout it was decoded with.
type FormatError struct {
	Want int // bytes required by the layout
	Got  int // bytes left after skipping header and trailer
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("matrix: payload has %d bytes, layout needs %d", e.Got, e.Want)
}

// Is reports whether target is [ErrFormat].
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
