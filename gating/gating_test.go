package gating

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-gate/internal/testutil"
	"github.com/cwbudde/algo-gate/matrix"
	"github.com/cwbudde/algo-gate/roi"
)

const (
	testRows = 16
	testCols = 64
)

func testMatrix(t *testing.T) *matrix.Matrix {
	t.Helper()
	m, err := matrix.New(testRows, testCols, testutil.CountGrid(3, testRows, testCols, 40))
	if err != nil {
		t.Fatalf("matrix.New error: %v", err)
	}
	return m
}

func region(t *testing.T, lo, hi int, role roi.Role) roi.Region {
	t.Helper()
	r, err := roi.Restore(lo, hi, role)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	return r
}

// columnBand sums columns lo..hi straight from the matrix.
func columnBand(m *matrix.Matrix, lo, hi int) []float64 {
	rows, _ := m.Dims()
	out := make([]float64, rows)
	for r := range out {
		for c := lo; c <= hi; c++ {
			out[r] += m.At(r, c)
		}
	}
	return out
}

func TestGatedWithoutMinusIsPlainSum(t *testing.T) {
	m := testMatrix(t)
	plus := []roi.Region{region(t, 2, 4, roi.Plus), region(t, 10, 12, roi.Plus)}

	got, err := Gated(m, plus, nil)
	if err != nil {
		t.Fatalf("Gated error: %v", err)
	}
	want := testutil.Sum(columnBand(m, 2, 4), columnBand(m, 10, 12))
	testutil.RequireSliceNearlyEqual(t, got, want, 0)

	variance, err := Error(m, plus, []roi.Region{})
	if err != nil {
		t.Fatalf("Error error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, variance, want, 0)
}

func TestSuppressionIsWidthRatio(t *testing.T) {
	plus := []roi.Region{region(t, 0, 4, roi.Plus), region(t, 10, 14, roi.Plus)}
	minus := []roi.Region{region(t, 20, 39, roi.Minus)}

	k, err := Suppression(plus, minus)
	if err != nil {
		t.Fatalf("Suppression error: %v", err)
	}
	if k != 0.5 {
		t.Fatalf("Suppression got=%v want=0.5", k)
	}

	_, err = Suppression(plus, nil)
	var de *DivisionError
	if !errors.As(err, &de) || !errors.Is(err, ErrDivision) {
		t.Fatalf("expected *DivisionError, got %v", err)
	}
	if de.Group != -1 || de.PlusWidth != 10 {
		t.Fatalf("unexpected DivisionError: %+v", *de)
	}
}

func TestGatedAndErrorWithBackground(t *testing.T) {
	m := testMatrix(t)
	plus := []roi.Region{region(t, 0, 4, roi.Plus), region(t, 10, 14, roi.Plus)}
	minus := []roi.Region{region(t, 20, 39, roi.Minus)}

	raw := testutil.Sum(columnBand(m, 0, 4), columnBand(m, 10, 14))
	bg := columnBand(m, 20, 39)

	gated, err := Gated(m, plus, minus)
	if err != nil {
		t.Fatalf("Gated error: %v", err)
	}
	variance, err := Error(m, plus, minus)
	if err != nil {
		t.Fatalf("Error error: %v", err)
	}

	if len(gated) != testRows || len(variance) != testRows {
		t.Fatalf("lengths got=%d,%d want=%d", len(gated), len(variance), testRows)
	}
	for i := range raw {
		if want := raw[i] - 0.5*bg[i]; math.Abs(gated[i]-want) > 1e-9 {
			t.Fatalf("gated[%d]=%v want=%v", i, gated[i], want)
		}
		if want := raw[i] + 0.25*bg[i]; math.Abs(variance[i]-want) > 1e-9 {
			t.Fatalf("error[%d]=%v want=%v", i, variance[i], want)
		}
	}
	testutil.RequireNonNegative(t, variance)
}

func TestErrorSpectrumNonNegative(t *testing.T) {
	m := testMatrix(t)
	// A wide background with a narrow signal drives the gated spectrum
	// negative; its variance must stay non-negative.
	plus := []roi.Region{region(t, 30, 30, roi.Plus)}
	minus := []roi.Region{region(t, 0, 25, roi.Minus), region(t, 40, 63, roi.Minus)}

	variance, err := Error(m, plus, minus)
	if err != nil {
		t.Fatalf("Error error: %v", err)
	}
	testutil.RequireNonNegative(t, variance)
}

func TestEmptyPlusIsAnError(t *testing.T) {
	m := testMatrix(t)
	minus := []roi.Region{region(t, 1, 3, roi.Minus)}
	groups := []roi.Region{region(t, 0, 10, roi.Group)}

	if _, err := Gated(m, nil, minus); !errors.Is(err, ErrNoPlusRegions) {
		t.Fatalf("Gated: expected ErrNoPlusRegions, got %v", err)
	}
	if _, err := Error(m, nil, nil); !errors.Is(err, ErrNoPlusRegions) {
		t.Fatalf("Error: expected ErrNoPlusRegions, got %v", err)
	}
	if _, err := GatedWithGroups(m, groups, nil, minus); !errors.Is(err, ErrNoPlusRegions) {
		t.Fatalf("GatedWithGroups: expected ErrNoPlusRegions, got %v", err)
	}
	if _, err := Gated(nil, minus, nil); !errors.Is(err, ErrNilMatrix) {
		t.Fatalf("expected ErrNilMatrix, got %v", err)
	}
}

func TestRegionOutsideMatrix(t *testing.T) {
	m := testMatrix(t)
	plus := []roi.Region{region(t, 60, 70, roi.Plus)}
	if _, err := Gated(m, plus, nil); !errors.Is(err, matrix.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func twoGroups(t *testing.T) (groups, plus, minus []roi.Region) {
	t.Helper()
	groups = []roi.Region{region(t, 0, 20, roi.Group), region(t, 30, 50, roi.Group)}
	plus = []roi.Region{region(t, 2, 4, roi.Plus), region(t, 32, 34, roi.Plus)}
	minus = []roi.Region{region(t, 6, 14, roi.Minus), region(t, 36, 44, roi.Minus)}
	return groups, plus, minus
}

func TestGroupsNormalizeIndependently(t *testing.T) {
	m := testMatrix(t)
	groups, plus, minus := twoGroups(t)

	gated, err := GatedWithGroups(m, groups, plus, minus)
	if err != nil {
		t.Fatalf("GatedWithGroups error: %v", err)
	}
	variance, err := ErrorWithGroups(m, groups, plus, minus)
	if err != nil {
		t.Fatalf("ErrorWithGroups error: %v", err)
	}

	p1, m1 := columnBand(m, 2, 4), columnBand(m, 6, 14)
	p2, m2 := columnBand(m, 32, 34), columnBand(m, 36, 44)
	const k = 1.0 / 3.0
	for i := range gated {
		want := (p1[i] - k*m1[i]) + (p2[i] - k*m2[i])
		if math.Abs(gated[i]-want) > 1e-9 {
			t.Fatalf("gated[%d]=%v want=%v", i, gated[i], want)
		}
		wantVar := (p1[i] + k*k*m1[i]) + (p2[i] + k*k*m2[i])
		if math.Abs(variance[i]-wantVar) > 1e-9 {
			t.Fatalf("error[%d]=%v want=%v", i, variance[i], wantVar)
		}
	}
}

func TestGroupMembershipIsStrict(t *testing.T) {
	m := testMatrix(t)
	groups := []roi.Region{region(t, 10, 30, roi.Group)}
	plus := []roi.Region{
		region(t, 12, 14, roi.Plus),
		region(t, 10, 12, roi.Plus), // touches the group edge: excluded
	}
	minus := []roi.Region{region(t, 20, 25, roi.Minus), region(t, 28, 30, roi.Minus)}

	got, err := GatedWithGroups(m, groups, plus, minus)
	if err != nil {
		t.Fatalf("GatedWithGroups error: %v", err)
	}
	p, bg := columnBand(m, 12, 14), columnBand(m, 20, 25)
	for i := range got {
		want := p[i] - 0.5*bg[i]
		if math.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("got[%d]=%v want=%v", i, got[i], want)
		}
	}
}

func TestGroupWithoutBackground(t *testing.T) {
	m := testMatrix(t)
	groups, plus, minus := twoGroups(t)
	minus = minus[:1] // second group loses its background

	_, err := GatedWithGroups(m, groups, plus, minus)
	var de *DivisionError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DivisionError, got %v", err)
	}
	if de.Group != 1 || de.PlusWidth != 3 {
		t.Fatalf("unexpected DivisionError: %+v", *de)
	}

	got, err := GatedWithGroups(m, groups, plus, minus, WithEmptyBackground(EmptyBackgroundPlusOnly))
	if err != nil {
		t.Fatalf("GatedWithGroups(plus-only) error: %v", err)
	}
	p1, m1, p2 := columnBand(m, 2, 4), columnBand(m, 6, 14), columnBand(m, 32, 34)
	for i := range got {
		want := p1[i] - m1[i]/3 + p2[i]
		if math.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("got[%d]=%v want=%v", i, got[i], want)
		}
	}
}

func TestGroupsRequireGroups(t *testing.T) {
	m := testMatrix(t)
	_, plus, minus := twoGroups(t)
	if _, err := GatedWithGroups(m, nil, plus, minus); !errors.Is(err, ErrNoGroups) {
		t.Fatalf("expected ErrNoGroups, got %v", err)
	}
}

func TestComputeSelectsGrouping(t *testing.T) {
	m := testMatrix(t)
	groups, plus, minus := twoGroups(t)

	set := &roi.Set{Plus: plus, Minus: minus}
	flat, err := Compute(m, set)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if flat.Grouped {
		t.Fatalf("Compute used groups without group regions")
	}
	want, _ := Gated(m, plus, minus)
	testutil.RequireSliceNearlyEqual(t, flat.Gated, want, 0)

	set.Group = groups
	grouped, err := Compute(m, set)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if !grouped.Grouped {
		t.Fatalf("Compute ignored group regions")
	}
	wantVar, _ := ErrorWithGroups(m, groups, plus, minus)
	testutil.RequireSliceNearlyEqual(t, grouped.Error, wantVar, 0)
}
