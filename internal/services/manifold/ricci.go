package manifold

import (
	"math"
	"sort"
)

type flowHit struct {
	index       int
	singularity int
	before      float64
}

// DetectRicciFlow looks, after each singularity s, for the first index within
// cfg.Lookahead whose |tension| fell to (1-DropRatio)*|tension[s]| or less.
// At most one hit is kept per index.
func DetectRicciFlow(singularities []int, tension []float64, cfg RicciConfig) []flowHit {
	hits := make([]flowHit, 0, len(singularities))
	seen := make(map[int]bool, len(singularities))
	for _, s := range singularities {
		if s < 0 || s >= len(tension) {
			continue
		}
		peak := math.Abs(tension[s])
		if peak == 0 {
			continue
		}
		limit := (1 - cfg.DropRatio) * peak
		for j := s + 1; j <= s+cfg.Lookahead && j < len(tension); j++ {
			if math.Abs(tension[j]) <= limit {
				if !seen[j] {
					seen[j] = true
					hits = append(hits, flowHit{index: j, singularity: s, before: tension[s]})
				}
				break
			}
		}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].index < hits[b].index })
	return hits
}
