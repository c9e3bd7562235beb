package spe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	// Ext and ErrExt are the file extensions of a gated spectrum and its
	// error spectrum.
	Ext    = ".spe"
	ErrExt = ".err"

	// Channels is the channel count of spectra projected from the standard
	// 4096×4096 matrices.
	Channels = 4096

	nameLen     = 8
	headerLen   = 36
	trailerLen  = 4
	headerBytes = 24 // length of the first record

	// DataRecordLen is the data record length written before and after the
	// samples. Readers of the format expect this value whatever the
	// channel count.
	DataRecordLen = 4 * Channels
)

// Errors returned by SPE functions.
var (
	ErrFormat = errors.New("spe: malformed spectrum file")
	ErrEmpty  = errors.New("spe: empty spectrum")
)

// FormatError reports an SPE file whose framing does not match its header.
type FormatError struct {
	Field string
	Want  int
	Got   int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("spe: %s is %d, want %d", e.Field, e.Got, e.Want)
}

// Is reports whether target is [ErrFormat].
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

type header struct {
	RecordLen uint32
	Name      [nameLen]byte
	Channels  uint32
	Dim2      uint32
	Red1      uint32
	Red2      uint32
	RecordEnd uint32
	DataLen   uint32
}

// Name returns the 8-byte header name for s: the last eight characters,
// right-aligned and padded with spaces.
func Name(s string) [nameLen]byte {
	padded := strings.Repeat(" ", nameLen) + s
	var out [nameLen]byte
	copy(out[:], padded[len(padded)-nameLen:])
	return out
}

// WriteSPE writes data as an SPE file named name. Values are stored as
// float32. The channel word holds len(data); both data record markers are
// always [DataRecordLen].
func WriteSPE(w io.Writer, name string, data []float64) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	const dataLen = uint32(DataRecordLen)
	h := header{
		RecordLen: headerBytes,
		Name:      Name(name),
		Channels:  uint32(len(data)),
		Dim2:      1,
		Red1:      1,
		Red2:      1,
		RecordEnd: headerBytes,
		DataLen:   dataLen,
	}

	buf := make([]byte, 0, headerLen+4*len(data)+trailerLen)
	var err error
	if buf, err = binary.Append(buf, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("spe: encode header: %w", err)
	}
	for _, v := range data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	buf = binary.LittleEndian.AppendUint32(buf, dataLen)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("spe: write: %w", err)
	}
	return nil
}

// Spectrum is a decoded SPE file.
type Spectrum struct {
	Name string
	Data []float64
}

// ReadSPE decodes an SPE file written by [WriteSPE] or by other tools
// using the same record layout.
func ReadSPE(r io.Reader) (*Spectrum, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("spe: read: %w", err)
	}
	if len(raw) < headerLen+trailerLen {
		return nil, &FormatError{Field: "file size", Want: headerLen + trailerLen, Got: len(raw)}
	}

	var h header
	if err := binary.Read(bytes.NewReader(raw[:headerLen]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("spe: decode header: %w", err)
	}
	if h.RecordLen != headerBytes || h.RecordEnd != headerBytes {
		return nil, &FormatError{Field: "header record length", Want: headerBytes, Got: int(h.RecordLen)}
	}
	if h.DataLen != DataRecordLen {
		return nil, &FormatError{Field: "data record length", Want: DataRecordLen, Got: int(h.DataLen)}
	}
	if h.Channels == 0 {
		return nil, ErrEmpty
	}
	want := headerLen + 4*int(h.Channels) + trailerLen
	if len(raw) != want {
		return nil, &FormatError{Field: "file size", Want: want, Got: len(raw)}
	}
	if end := binary.LittleEndian.Uint32(raw[len(raw)-trailerLen:]); end != DataRecordLen {
		return nil, &FormatError{Field: "data record trailer", Want: DataRecordLen, Got: int(end)}
	}

	payload := raw[headerLen : len(raw)-trailerLen]
	data := make([]float64, h.Channels)
	for i := range data {
		data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:])))
	}
	return &Spectrum{Name: strings.TrimSpace(string(h.Name[:])), Data: data}, nil
}
