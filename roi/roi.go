// Package roi defines channel gates (regions of interest) on the X axis of a
// coincidence matrix, the ordered collections a gating session keeps, and
// the plain-text ROI list file.
package roi

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-gate/matrix"
)

// DefaultFill is the shrink factor applied to a dragged span when a gate is
// created interactively.
const DefaultFill = 0.03

// ErrInvalidRegion is returned for regions with negative bounds or an
// unknown role.
var ErrInvalidRegion = errors.New("roi: invalid region")

// Role tags what a region contributes to a gated spectrum.
type Role int

const (
	// Plus regions are signal gates.
	Plus Role = iota
	// Minus regions are background gates, scaled by the suppression factor.
	Minus
	// Group regions bound sets of plus/minus regions that are normalized
	// together.
	Group
)

// Roles lists every role in list-file order.
var Roles = [...]Role{Plus, Minus, Group}

func (r Role) String() string {
	switch r {
	case Plus:
		return "plus"
	case Minus:
		return "minus"
	case Group:
		return "group"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) valid() bool {
	return r == Plus || r == Minus || r == Group
}

// Region is an inclusive channel interval [Lo, Hi] with a role.
type Region struct {
	Lo   int
	Hi   int
	Role Role
}

// NewInteractive creates the thin starting strip for a span [a, b] dragged or
// viewed by the user: the strip is centred on the span and fill times as wide.
// A non-positive fill uses [DefaultFill].
func NewInteractive(a, b, fill float64, role Role) (Region, error) {
	if fill <= 0 {
		fill = DefaultFill
	}
	if a > b {
		a, b = b, a
	}
	center := math.Floor((a + b) / 2)
	half := math.Floor(fill * (b - a) / 2)
	return Restore(int(center-half), int(center+half), role)
}

// Restore creates a region with verbatim bounds, as read back from a list
// file. Swapped bounds are put in order.
func Restore(lo, hi int, role Role) (Region, error) {
	if !role.valid() {
		return Region{}, fmt.Errorf("%w: unknown role %d", ErrInvalidRegion, int(role))
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		return Region{}, fmt.Errorf("%w: negative bound [%d,%d]", ErrInvalidRegion, lo, hi)
	}
	return Region{Lo: lo, Hi: hi, Role: role}, nil
}

// Width returns the number of channels covered, Hi - Lo + 1.
func (r Region) Width() int {
	return r.Hi - r.Lo + 1
}

// Slice sums the matrix columns covered by the region. The result has one
// value per matrix row.
func (r Region) Slice(m *matrix.Matrix) ([]float64, error) {
	out, err := m.ColumnSum(r.Lo, r.Hi)
	if err != nil {
		return nil, fmt.Errorf("roi: %s region [%d,%d]: %w", r.Role, r.Lo, r.Hi, err)
	}
	return out, nil
}

// InRegion reports whether r lies strictly inside outer. Shared boundaries
// do not count.
func (r Region) InRegion(outer Region) bool {
	return r.Lo > outer.Lo && r.Hi < outer.Hi
}

func (r Region) String() string {
	return fmt.Sprintf("%s[%d,%d]", r.Role, r.Lo, r.Hi)
}
