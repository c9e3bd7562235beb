package matrix

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// ElementType identifies the cell type of a raw matrix file. The zero value
// is Uint16, the cell type of legacy .mat files.
type ElementType int

const (
	Uint16 ElementType = iota
	Uint8
	Int8
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float32
	Float64
)

var elementInfo = [...]struct {
	name string
	code string
	size int
}{
	Uint16:  {"uint16", "H", 2},
	Uint8:   {"uint8", "B", 1},
	Int8:    {"int8", "b", 1},
	Int16:   {"int16", "h", 2},
	Uint32:  {"uint32", "I", 4},
	Int32:   {"int32", "i", 4},
	Uint64:  {"uint64", "Q", 8},
	Int64:   {"int64", "q", 8},
	Float32: {"float32", "f", 4},
	Float64: {"float64", "d", 8},
}

func (t ElementType) valid() bool {
	return t >= 0 && int(t) < len(elementInfo)
}

// Size returns the cell size in bytes, or 0 for an unknown type.
func (t ElementType) Size() int {
	if !t.valid() {
		return 0
	}
	return elementInfo[t].size
}

func (t ElementType) String() string {
	if !t.valid() {
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
	return elementInfo[t].name
}

// Code returns the single-letter struct code of the type (H, I, f, ...).
func (t ElementType) Code() string {
	if !t.valid() {
		return ""
	}
	return elementInfo[t].code
}

// ParseElementType accepts struct codes ("H", "I", "f", ...) and type names
// ("uint16", "float32", ...). Codes are case sensitive, names are not.
func ParseElementType(s string) (ElementType, error) {
	s = strings.TrimSpace(s)
	for i, info := range elementInfo {
		if s == info.code || strings.EqualFold(s, info.name) {
			return ElementType(i), nil
		}
	}
	return 0, fmt.Errorf("matrix: unknown element type %q", s)
}

// decode converts one cell starting at b[0].
func (t ElementType) decode(b []byte, order binary.ByteOrder) float64 {
	switch t {
	case Uint8:
		return float64(b[0])
	case Int8:
		return float64(int8(b[0]))
	case Uint16:
		return float64(order.Uint16(b))
	case Int16:
		return float64(int16(order.Uint16(b)))
	case Uint32:
		return float64(order.Uint32(b))
	case Int32:
		return float64(int32(order.Uint32(b)))
	case Uint64:
		return float64(order.Uint64(b))
	case Int64:
		return float64(int64(order.Uint64(b)))
	case Float32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case Float64:
		return math.Float64frombits(order.Uint64(b))
	}
	return 0
}

// encode writes v into b as one cell. It is the inverse of decode for
// values representable in the cell type.
func (t ElementType) encode(b []byte, order binary.ByteOrder, v float64) {
	switch t {
	case Uint8:
		b[0] = uint8(v)
	case Int8:
		b[0] = byte(int8(v))
	case Uint16:
		order.PutUint16(b, uint16(v))
	case Int16:
		order.PutUint16(b, uint16(int16(v)))
	case Uint32:
		order.PutUint32(b, uint32(v))
	case Int32:
		order.PutUint32(b, uint32(int32(v)))
	case Uint64:
		order.PutUint64(b, uint64(v))
	case Int64:
		order.PutUint64(b, uint64(int64(v)))
	case Float32:
		order.PutUint32(b, math.Float32bits(float32(v)))
	case Float64:
		order.PutUint64(b, math.Float64bits(v))
	}
}

// Order is the storage order of the cells in a raw file.
type Order int

const (
	// OrderC stores rows one after another (row-major).
	OrderC Order = iota
	// OrderF stores columns one after another (column-major, Fortran).
	OrderF
)

func (o Order) String() string {
	switch o {
	case OrderC:
		return "C"
	case OrderF:
		return "F"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder accepts "C" and "F" (case insensitive).
func ParseOrder(s string) (Order, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C":
		return OrderC, nil
	case "F":
		return OrderF, nil
	}
	return 0, fmt.Errorf("matrix: unknown storage order %q", s)
}

// ParseByteOrder accepts struct prefixes ("<", ">", "=", "!") and the words
// "little" and "big".
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "<", "=", "little", "le":
		return binary.LittleEndian, nil
	case ">", "!", "big", "be":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("matrix: unknown byte order %q", s)
}

// Layout describes how a raw byte payload maps onto a matrix.
type Layout struct {
	DimX      int // columns, the gate axis
	DimY      int // rows, the gated spectrum axis
	Order     Order
	Element   ElementType
	ByteOrder binary.ByteOrder // nil means little endian
	SkipFirst int              // header bytes to drop
	SkipLast  int              // trailer bytes to drop
}

// PayloadSize returns the number of cell bytes the layout expects.
func (l Layout) PayloadSize() int {
	return l.DimX * l.DimY * l.Element.Size()
}

// Validate checks that the layout can describe a matrix.
func (l Layout) Validate() error {
	if l.DimX <= 0 || l.DimY <= 0 {
		return fmt.Errorf("%w: dimensions must be > 0: %dx%d", ErrLayout, l.DimX, l.DimY)
	}
	if !l.Element.valid() {
		return fmt.Errorf("%w: unknown element type %d", ErrLayout, int(l.Element))
	}
	if l.Order != OrderC && l.Order != OrderF {
		return fmt.Errorf("%w: unknown storage order %d", ErrLayout, int(l.Order))
	}
	if l.SkipFirst < 0 || l.SkipLast < 0 {
		return fmt.Errorf("%w: skip counts must be >= 0: first=%d last=%d", ErrLayout, l.SkipFirst, l.SkipLast)
	}
	return nil
}

func (l Layout) byteOrder() binary.ByteOrder {
	if l.ByteOrder == nil {
		return binary.LittleEndian
	}
	return l.ByteOrder
}
