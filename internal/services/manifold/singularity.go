package manifold

import (
	"math"
	"sort"
)

// singularityGates are the thresholds both conditions are tested against.
type singularityGates struct {
	curvature float64
	tension   float64
}

// DetectSingularities flags indices where |curvature| exceeds
// median + k*MAD (floored at curvatureFloor) and |tension| exceeds its
// percentile threshold (floored at cfg.TensionFloor). Candidates closer than
// cfg.MinGap keep only the one with the largest |curvature|. Indices are
// returned in ascending order.
func DetectSingularities(curvature, tension []float64, cfg SingularityConfig, curvatureFloor float64) ([]int, singularityGates) {
	absC := absAll(curvature)
	absT := absAll(tension)

	m := median(absC)
	gates := singularityGates{
		curvature: math.Max(m+cfg.MADMultiplier*mad(absC, m), curvatureFloor),
		tension:   math.Max(quantile(absT, cfg.TensionPercentile/100), cfg.TensionFloor),
	}

	var candidates []int
	for i := range absC {
		if i >= len(absT) {
			break
		}
		if absC[i] > gates.curvature && absT[i] > gates.tension {
			candidates = append(candidates, i)
		}
	}

	// Strongest first; equal scores keep index order.
	sort.SliceStable(candidates, func(a, b int) bool {
		return absC[candidates[a]] > absC[candidates[b]]
	})

	kept := make([]int, 0, len(candidates))
	for _, c := range candidates {
		clear := true
		for _, k := range kept {
			if abs(c-k) < cfg.MinGap {
				clear = false
				break
			}
		}
		if clear {
			kept = append(kept, c)
		}
	}
	sort.Ints(kept)
	return kept, gates
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
