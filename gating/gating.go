package gating

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-gate/matrix"
	"github.com/cwbudde/algo-gate/roi"
)

// Errors returned by gating functions.
var (
	ErrNoPlusRegions = errors.New("gating: at least one plus region is required")
	ErrNoGroups      = errors.New("gating: no group regions")
	ErrDivision      = errors.New("gating: zero background width")
	ErrNilMatrix     = errors.New("gating: nil matrix")
)

// DivisionError reports a suppression factor with a zero denominator.
type DivisionError struct {
	// Group is the index of the offending group region, or -1 when the
	// gates are not grouped.
	Group     int
	PlusWidth int
}

func (e *DivisionError) Error() string {
	if e.Group < 0 {
		return fmt.Sprintf("gating: suppression factor %d/0: minus regions have zero total width", e.PlusWidth)
	}
	return fmt.Sprintf("gating: suppression factor %d/0 in group %d: no minus regions inside the group", e.PlusWidth, e.Group)
}

// Is reports whether target is [ErrDivision].
func (e *DivisionError) Is(target error) bool {
	return target == ErrDivision
}

// EmptyBackgroundPolicy decides what a group without minus regions
// contributes.
type EmptyBackgroundPolicy int

const (
	// EmptyBackgroundFail fails the whole call with a [*DivisionError].
	EmptyBackgroundFail EmptyBackgroundPolicy = iota
	// EmptyBackgroundPlusOnly adds the group's plus slices unsubtracted,
	// the same as ungrouped gating without minus regions.
	EmptyBackgroundPlusOnly
)

// Option configures grouped gating.
type Option func(*config)

type config struct {
	emptyBackground EmptyBackgroundPolicy
}

func defaultConfig() config {
	return config{emptyBackground: EmptyBackgroundFail}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEmptyBackground sets the policy for groups without minus regions.
func WithEmptyBackground(p EmptyBackgroundPolicy) Option {
	return func(cfg *config) {
		cfg.emptyBackground = p
	}
}

// Suppression returns Σ width(plus) / Σ width(minus).
func Suppression(plus, minus []roi.Region) (float64, error) {
	up, down := totalWidth(plus), totalWidth(minus)
	if down == 0 {
		return 0, &DivisionError{Group: -1, PlusWidth: up}
	}
	return float64(up) / float64(down), nil
}

// Gated returns Σ slice(plus) − k·Σ slice(minus). Without minus regions the
// plain plus sum is returned.
func Gated(m *matrix.Matrix, plus, minus []roi.Region) ([]float64, error) {
	return combine(m, plus, minus, subtract)
}

// Error returns Σ slice(plus) + k²·Σ slice(minus), the variance spectrum
// matching [Gated].
func Error(m *matrix.Matrix, plus, minus []roi.Region) ([]float64, error) {
	return combine(m, plus, minus, addVariance)
}

// GatedWithGroups gates each group independently and sums the results. Plus
// and minus regions take part in every group they lie strictly inside.
func GatedWithGroups(m *matrix.Matrix, groups, plus, minus []roi.Region, opts ...Option) ([]float64, error) {
	return combineGroups(m, groups, plus, minus, subtract, applyOptions(opts))
}

// ErrorWithGroups is the variance counterpart of [GatedWithGroups].
func ErrorWithGroups(m *matrix.Matrix, groups, plus, minus []roi.Region, opts ...Option) ([]float64, error) {
	return combineGroups(m, groups, plus, minus, addVariance, applyOptions(opts))
}

// mode selects how a scaled background enters the result.
type mode int

const (
	subtract mode = iota
	addVariance
)

func (md mode) coefficient(k float64) float64 {
	if md == addVariance {
		return k * k
	}
	return -k
}

func combine(m *matrix.Matrix, plus, minus []roi.Region, md mode) ([]float64, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if len(plus) == 0 {
		return nil, ErrNoPlusRegions
	}

	out, err := sumSlices(m, plus)
	if err != nil {
		return nil, err
	}
	if len(minus) == 0 {
		return out, nil
	}

	k, err := Suppression(plus, minus)
	if err != nil {
		return nil, err
	}
	bg, err := sumSlices(m, minus)
	if err != nil {
		return nil, err
	}
	floats.AddScaled(out, md.coefficient(k), bg)
	return out, nil
}

func combineGroups(m *matrix.Matrix, groups, plus, minus []roi.Region, md mode, cfg config) ([]float64, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if len(plus) == 0 {
		return nil, ErrNoPlusRegions
	}
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	rows, _ := m.Dims()
	out := make([]float64, rows)

	for gi, group := range groups {
		groupPlus := inside(plus, group)
		groupMinus := inside(minus, group)

		up, down := totalWidth(groupPlus), totalWidth(groupMinus)
		if down == 0 && cfg.emptyBackground == EmptyBackgroundFail {
			return nil, &DivisionError{Group: gi, PlusWidth: up}
		}

		if len(groupPlus) > 0 {
			ps, err := sumSlices(m, groupPlus)
			if err != nil {
				return nil, err
			}
			floats.Add(out, ps)
		}
		if down == 0 {
			continue
		}

		ms, err := sumSlices(m, groupMinus)
		if err != nil {
			return nil, err
		}
		k := float64(up) / float64(down)
		floats.AddScaled(out, md.coefficient(k), ms)
	}
	return out, nil
}

func inside(regions []roi.Region, group roi.Region) []roi.Region {
	var out []roi.Region
	for _, r := range regions {
		if r.InRegion(group) {
			out = append(out, r)
		}
	}
	return out
}

func totalWidth(regions []roi.Region) int {
	w := 0
	for _, r := range regions {
		w += r.Width()
	}
	return w
}

func sumSlices(m *matrix.Matrix, regions []roi.Region) ([]float64, error) {
	rows, _ := m.Dims()
	out := make([]float64, rows)
	for _, r := range regions {
		s, err := r.Slice(m)
		if err != nil {
			return nil, fmt.Errorf("gating: %w", err)
		}
		floats.Add(out, s)
	}
	return out, nil
}
