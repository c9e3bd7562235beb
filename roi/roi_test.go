package roi

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-gate/matrix"
)

func TestNewInteractiveStrip(t *testing.T) {
	// A view of 0..1000 gives a 3% strip around channel 500.
	r, err := NewInteractive(0, 1000, 0, Plus)
	if err != nil {
		t.Fatalf("NewInteractive error: %v", err)
	}
	if r.Lo != 485 || r.Hi != 515 {
		t.Fatalf("bounds got=[%d,%d] want=[485,515]", r.Lo, r.Hi)
	}
	if r.Width() != 31 {
		t.Fatalf("Width got=%d want=31", r.Width())
	}
	if r.Role != Plus {
		t.Fatalf("role got=%v want=plus", r.Role)
	}
}

func TestNewInteractiveSwappedSpan(t *testing.T) {
	a, err := NewInteractive(1000, 0, DefaultFill, Minus)
	if err != nil {
		t.Fatalf("NewInteractive error: %v", err)
	}
	b, _ := NewInteractive(0, 1000, DefaultFill, Minus)
	if a != b {
		t.Fatalf("swapped span got=%v want=%v", a, b)
	}
}

func TestWidthSurvivesSaveAndRestore(t *testing.T) {
	spans := [][2]float64{{0, 1000}, {120.7, 893.2}, {10, 11}, {2000, 4095}}
	for _, span := range spans {
		dragged, err := NewInteractive(span[0], span[1], DefaultFill, Group)
		if err != nil {
			t.Fatalf("NewInteractive(%v) error: %v", span, err)
		}
		restored, err := Restore(dragged.Lo, dragged.Hi, Group)
		if err != nil {
			t.Fatalf("Restore error: %v", err)
		}
		if restored.Width() != dragged.Width() {
			t.Fatalf("span %v: restored width=%d dragged width=%d", span, restored.Width(), dragged.Width())
		}
	}
}

func TestRestore(t *testing.T) {
	r, err := Restore(20, 10, Minus)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if r.Lo != 10 || r.Hi != 20 || r.Width() != 11 {
		t.Fatalf("Restore(20,10)=%v width=%d", r, r.Width())
	}

	if _, err := Restore(-1, 5, Plus); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion for negative bound, got %v", err)
	}
	if _, err := Restore(1, 5, Role(9)); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion for unknown role, got %v", err)
	}

	single, _ := Restore(7, 7, Plus)
	if single.Width() != 1 {
		t.Fatalf("single-channel width got=%d want=1", single.Width())
	}
}

func TestSliceLengthMatchesRows(t *testing.T) {
	rows, cols := 5, 8
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i)
	}
	m, err := matrix.New(rows, cols, data)
	if err != nil {
		t.Fatalf("matrix.New error: %v", err)
	}

	for _, r := range []Region{{Lo: 0, Hi: 0}, {Lo: 2, Hi: 5}, {Lo: 0, Hi: 7}} {
		got, err := r.Slice(m)
		if err != nil {
			t.Fatalf("Slice(%v) error: %v", r, err)
		}
		if len(got) != rows {
			t.Fatalf("Slice(%v) length got=%d want=%d", r, len(got), rows)
		}
		for row := range got {
			want := 0.0
			for c := r.Lo; c <= r.Hi; c++ {
				want += m.At(row, c)
			}
			if got[row] != want {
				t.Fatalf("Slice(%v)[%d]=%v want=%v", r, row, got[row], want)
			}
		}
	}

	if _, err := (Region{Lo: 6, Hi: 8}).Slice(m); !errors.Is(err, matrix.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestInRegionIsStrict(t *testing.T) {
	outer := Region{Lo: 10, Hi: 20, Role: Group}
	cases := []struct {
		r    Region
		want bool
	}{
		{Region{Lo: 11, Hi: 19}, true},
		{Region{Lo: 10, Hi: 19}, false},
		{Region{Lo: 11, Hi: 20}, false},
		{Region{Lo: 5, Hi: 25}, false},
		{Region{Lo: 21, Hi: 22}, false},
	}
	for _, tc := range cases {
		if got := tc.r.InRegion(outer); got != tc.want {
			t.Fatalf("%v.InRegion(%v)=%v want=%v", tc.r, outer, got, tc.want)
		}
	}
}

func TestSetLifecycle(t *testing.T) {
	var s Set
	p1, _ := Restore(1, 2, Plus)
	p2, _ := Restore(5, 9, Plus)
	m1, _ := Restore(20, 30, Minus)
	g1, _ := Restore(0, 40, Group)

	if err := s.Add(p1, p2, m1, g1); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if s.Len(Plus) != 2 || s.Len(Minus) != 1 || s.Len(Group) != 1 {
		t.Fatalf("unexpected sizes: %d %d %d", s.Len(Plus), s.Len(Minus), s.Len(Group))
	}

	got, ok := s.RemoveLast(Plus)
	if !ok || got != p2 {
		t.Fatalf("RemoveLast(plus)=%v,%v want=%v", got, ok, p2)
	}

	clone := s.Clone()
	s.Clear(Minus)
	if s.Len(Minus) != 0 || clone.Len(Minus) != 1 {
		t.Fatalf("Clear affected clone or did not clear: set=%d clone=%d", s.Len(Minus), clone.Len(Minus))
	}

	s.ClearAll()
	if _, ok := s.RemoveLast(Group); ok {
		t.Fatalf("RemoveLast on empty collection reported ok")
	}

	if err := s.Add(Region{Lo: 1, Hi: 2, Role: Role(5)}); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
}
