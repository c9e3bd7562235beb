package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-gate/spe"
)

func writeOverlay(t *testing.T, name string, data []float64) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, spe.WriteSPE(&buf, name, data))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestOverlayScaling(t *testing.T) {
	s := loaded(t)
	require.NoError(t, s.AddROI(gates(t)...))
	sp, err := s.Refresh()
	require.NoError(t, err)
	path := writeOverlay(t, "ref.spe", []float64{0, 10, 5})

	fixed, err := s.Overlay(path, OnGated, 2)
	require.NoError(t, err)
	require.Equal(t, "ref.spe", fixed.Name)
	require.Equal(t, []float64{0, 20, 10}, fixed.Data)

	top := 0.0
	for _, v := range sp.Gated {
		top = max(top, v)
	}
	auto, err := s.Overlay(path, OnGated, AutoScale)
	require.NoError(t, err)
	require.InDelta(t, top/10, auto.Scale, 1e-12)
	require.InDelta(t, top, auto.Data[1], 1e-9)

	proj := s.Matrix().ProjectX()
	top = 0
	for _, v := range proj {
		top = max(top, v)
	}
	upper, err := s.Overlay(path, OnProjection, AutoScale)
	require.NoError(t, err)
	require.InDelta(t, top, upper.Data[1], 1e-9)
	require.Equal(t, OnProjection, upper.Target)

	require.Len(t, s.Overlays(), 3)
	s.ClearOverlays()
	require.Empty(t, s.Overlays())
}

func TestOverlayErrors(t *testing.T) {
	path := writeOverlay(t, "zero.spe", []float64{0, 0, 0})

	empty, err := New()
	require.NoError(t, err)
	_, err = empty.Overlay(path, OnGated, 1)
	require.ErrorIs(t, err, ErrNoMatrix)

	s := loaded(t)
	_, err = s.Overlay(path, OnGated, AutoScale)
	require.ErrorIs(t, err, spe.ErrZeroScale)
	_, err = s.Overlay(path, Target(7), 1)
	require.ErrorIs(t, err, ErrTarget)
	_, err = s.Overlay(filepath.Join(t.TempDir(), "missing.spe"), OnGated, 1)
	require.Error(t, err)
	require.Empty(t, s.Overlays())
}
