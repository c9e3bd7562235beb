package matrix

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// formatFields is the number of lines describing one entry of a type table.
const formatFields = 9

// Format is a named, file-extension keyed matrix layout.
type Format struct {
	Label     string
	Extension string
	Layout    Layout
}

// DefaultFormats returns the built-in legacy layouts: 4096x4096 row-major
// little-endian matrices with 2-byte (mat) and 4-byte (m4b) unsigned cells.
func DefaultFormats() []Format {
	return []Format{
		{
			Label:     "2byte uint matrix",
			Extension: "mat",
			Layout:    Layout{DimX: 4096, DimY: 4096, Order: OrderC, Element: Uint16, ByteOrder: binary.LittleEndian},
		},
		{
			Label:     "4byte uint matrix",
			Extension: "m4b",
			Layout:    Layout{DimX: 4096, DimY: 4096, Order: OrderC, Element: Uint32, ByteOrder: binary.LittleEndian},
		},
	}
}

// Registry looks up formats by extension or label. Later entries shadow
// earlier ones with the same extension.
type Registry struct {
	formats []Format
}

// NewRegistry returns a registry holding the default formats followed by
// extra.
func NewRegistry(extra ...Format) *Registry {
	r := &Registry{formats: DefaultFormats()}
	r.formats = append(r.formats, extra...)
	return r
}

// Add appends formats to the registry.
func (r *Registry) Add(formats ...Format) {
	r.formats = append(r.formats, formats...)
}

// Formats returns a copy of the registered formats in registration order.
func (r *Registry) Formats() []Format {
	out := make([]Format, len(r.formats))
	copy(out, r.formats)
	return out
}

// ByExtension returns the last format registered for ext. A leading dot is
// ignored.
func (r *Registry) ByExtension(ext string) (Format, bool) {
	ext = strings.TrimPrefix(ext, ".")
	for i := len(r.formats) - 1; i >= 0; i-- {
		if strings.EqualFold(r.formats[i].Extension, ext) {
			return r.formats[i], true
		}
	}
	return Format{}, false
}

// ByLabel returns the last format whose label matches.
func (r *Registry) ByLabel(label string) (Format, bool) {
	for i := len(r.formats) - 1; i >= 0; i-- {
		if r.formats[i].Label == label {
			return r.formats[i], true
		}
	}
	return Format{}, false
}

// ParseFormats reads a legacy matrix type table. Every entry is nine
// non-empty lines: label, extension, dimX, dimY, order, type code, byte
// order, skipFirst, skipLast. Labels may contain spaces.
func ParseFormats(r io.Reader) ([]Format, error) {
	var fields []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields = append(fields, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("matrix: read format table: %w", err)
	}
	if len(fields)%formatFields != 0 {
		return nil, fmt.Errorf("%w: %d lines is not a multiple of %d", ErrFormatTable, len(fields), formatFields)
	}

	formats := make([]Format, 0, len(fields)/formatFields)
	for i := 0; i < len(fields); i += formatFields {
		f, err := parseFormat(fields[i : i+formatFields])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrFormatTable, i/formatFields, err)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func parseFormat(fields []string) (Format, error) {
	ints := make([]int, 0, 4)
	for _, s := range []string{fields[2], fields[3], fields[7], fields[8]} {
		v, err := strconv.Atoi(s)
		if err != nil {
			return Format{}, err
		}
		ints = append(ints, v)
	}
	order, err := ParseOrder(fields[4])
	if err != nil {
		return Format{}, err
	}
	elem, err := ParseElementType(fields[5])
	if err != nil {
		return Format{}, err
	}
	bo, err := ParseByteOrder(fields[6])
	if err != nil {
		return Format{}, err
	}

	f := Format{
		Label:     fields[0],
		Extension: strings.TrimPrefix(fields[1], "."),
		Layout: Layout{
			DimX:      ints[0],
			DimY:      ints[1],
			Order:     order,
			Element:   elem,
			ByteOrder: bo,
			SkipFirst: ints[2],
			SkipLast:  ints[3],
		},
	}
	if err := f.Layout.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}
