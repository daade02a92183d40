package manifold

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"Manifold/internal/domain/models"
)

type cluster struct {
	center  float64
	mass    float64
	members int
}

// LocateAttractors clusters prices into at most cfg.MaxCenters levels with a
// deterministic weighted k-means. Each point weighs 0.5^(age/(HalfLife*n))
// times its volume relative to the mean volume when volume is present.
// Centers within cfg.MergePct percent of each other are merged. Strength is
// the cluster's share of total mass. Results are ordered by strength, then
// price.
func LocateAttractors(prices, volumes []float64, hasVolume bool, cfg AttractorConfig) []models.Attractor {
	n := len(prices)
	if n == 0 {
		return nil
	}

	weights := attractorWeights(prices, volumes, hasVolume, cfg.HalfLife)
	centers := seedCenters(prices, cfg.MaxCenters)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < cfg.MaxIter; iter++ {
		changed := false
		for i, p := range prices {
			if c := nearestCenter(centers, p); c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		for c := range centers {
			var xs, ws []float64
			for i, a := range assign {
				if a == c {
					xs = append(xs, prices[i])
					ws = append(ws, weights[i])
				}
			}
			if len(xs) > 0 && floats.Sum(ws) > 0 {
				centers[c] = stat.Mean(xs, ws)
			}
		}
	}

	clusters := make([]cluster, len(centers))
	for c := range centers {
		clusters[c].center = centers[c]
	}
	for i, a := range assign {
		clusters[a].mass += weights[i]
		clusters[a].members++
	}
	clusters = mergeClusters(clusters, cfg.MergePct)

	var total float64
	for _, c := range clusters {
		total += c.mass
	}
	out := make([]models.Attractor, 0, len(clusters))
	for _, c := range clusters {
		if c.mass <= 0 || total <= 0 {
			continue
		}
		out = append(out, models.Attractor{
			Price:    c.center,
			Strength: math.Min(1, c.mass/total),
			Members:  c.members,
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Strength != out[b].Strength {
			return out[a].Strength > out[b].Strength
		}
		return out[a].Price < out[b].Price
	})
	return out
}

func attractorWeights(prices, volumes []float64, hasVolume bool, halfLife float64) []float64 {
	n := len(prices)
	w := make([]float64, n)
	span := halfLife * float64(n)

	var meanVol float64
	if hasVolume && len(volumes) == n {
		meanVol = stat.Mean(volumes, nil)
	}
	for i := range w {
		age := float64(n - 1 - i)
		w[i] = math.Pow(0.5, age/span)
		if meanVol > 0 {
			w[i] *= volumes[i] / meanVol
		}
	}
	if floats.Sum(w) == 0 {
		// every weighted point had zero volume; fall back to recency alone
		return attractorWeights(prices, nil, false, halfLife)
	}
	return w
}

// seedCenters picks up to k distinct prices at evenly spaced quantiles.
func seedCenters(prices []float64, k int) []float64 {
	sorted := sortedCopy(prices)
	seeds := make([]float64, 0, k)
	for j := 0; j < k; j++ {
		q := stat.Quantile((float64(j)+0.5)/float64(k), stat.Empirical, sorted, nil)
		if len(seeds) > 0 && seeds[len(seeds)-1] == q {
			continue
		}
		seeds = append(seeds, q)
	}
	return seeds
}

// nearestCenter returns the closest center; ties go to the lower index.
func nearestCenter(centers []float64, p float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, x := range centers {
		if d := math.Abs(x - p); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// mergeClusters folds neighbouring centers closer than pct percent together,
// mass-weighting the merged center.
func mergeClusters(clusters []cluster, pct float64) []cluster {
	sort.SliceStable(clusters, func(a, b int) bool { return clusters[a].center < clusters[b].center })
	out := make([]cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.members == 0 {
			continue
		}
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.center > 0 && (c.center-last.center)/last.center*100 <= pct {
				mass := last.mass + c.mass
				if mass > 0 {
					last.center = (last.center*last.mass + c.center*c.mass) / mass
				}
				last.mass = mass
				last.members += c.members
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
