package spe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads a spectrum from path, choosing the decoder by extension:
// .spe and .err are binary, .txt is text. Text spectra are named after the
// file.
func LoadFile(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("spe: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case Ext, ErrExt:
		return ReadSPE(f)
	case TextExt:
		data, err := ReadText(f)
		if err != nil {
			return nil, err
		}
		return &Spectrum{Name: filepath.Base(path), Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: unknown extension %q", ErrFormat, ext)
	}
}
