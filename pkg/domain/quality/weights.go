package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

// Weights maps a criterion to its share of the 0-10 total. A valid set sums
// to 1.0.
type Weights map[Criterion]float64

// WeightTolerance is how far a weight set may drift from 1.0 before it is
// renormalized.
const WeightTolerance = 0.01

func DefaultRequirementsWeights() Weights {
	return Weights{
		CriterionStructure:   0.20,
		CriterionEARS:        0.20,
		CriterionStories:     0.20,
		CriterionAcceptance:  0.20,
		CriterionNFR:         0.10,
		CriterionConstraints: 0.10,
	}
}

func DefaultDesignWeights() Weights {
	return Weights{
		CriterionStructure:    0.20,
		CriterionTraceability: 0.20,
		CriterionDiagrams:     0.15,
		CriterionTechnology:   0.15,
		CriterionNFRDesign:    0.15,
		CriterionInterfaces:   0.15,
	}
}

// DefaultWeights returns the default weight set for kind, or nil for kinds
// that are not weighted.
func DefaultWeights(kind document.Kind) Weights {
	switch kind {
	case document.KindRequirements:
		return DefaultRequirementsWeights()
	case document.KindDesign:
		return DefaultDesignWeights()
	}
	return nil
}

func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Normalize returns a copy scaled to sum to 1.0 when the sum is outside the
// tolerance, and whether scaling happened. An all-zero set is left alone.
func (w Weights) Normalize() (Weights, bool) {
	out := w.Clone()
	sum := out.Sum()
	if sum <= 0 || math.Abs(sum-1.0) <= WeightTolerance {
		return out, false
	}
	for k, v := range out {
		out[k] = v / sum
	}
	return out, true
}

// Merge overlays override onto the defaults of kind. Unknown criteria are
// rejected.
func Merge(kind document.Kind, override map[string]float64) (Weights, error) {
	base := DefaultWeights(kind)
	if base == nil {
		return nil, fmt.Errorf("%w: %s has no weights", document.ErrUnknownKind, kind)
	}
	keys := make([]string, 0, len(override))
	for k := range override {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c := Criterion(k)
		if _, ok := base[c]; !ok {
			return nil, fmt.Errorf("%w: %q for %s", ErrUnknownCriterion, k, kind)
		}
		if override[k] < 0 {
			return nil, fmt.Errorf("%w: %q is negative", ErrInvalidWeight, k)
		}
		base[c] = override[k]
	}
	return base, nil
}
