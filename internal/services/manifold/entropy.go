package manifold

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ShannonEntropy returns the entropy, in bits, of returns discretised into
// equal-width bins spanning their observed min and max. A span narrower than
// minSpan is widened symmetrically. Empty bins contribute nothing and a
// window with no spread has entropy 0.
func ShannonEntropy(returns []float64, bins int, minSpan float64) float64 {
	if len(returns) < 2 || bins < 2 {
		return 0
	}
	lo, hi := floats.Min(returns), floats.Max(returns)
	if hi == lo {
		return 0
	}
	if hi-lo < minSpan {
		mid := lo + (hi-lo)/2
		lo, hi = mid-minSpan/2, mid+minSpan/2
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[0] = math.Min(dividers[0], floats.Min(returns))
	// Histogram bins are half-open, so the top divider must sit above the max.
	dividers[bins] = math.Nextafter(math.Max(hi, floats.Max(returns)), math.Inf(1))

	counts := stat.Histogram(nil, dividers, sortedCopy(returns), nil)
	floats.Scale(1/float64(len(returns)), counts)
	return stat.Entropy(counts) / math.Ln2
}

// LocalEntropy returns, for each of the n price indices, the entropy of the
// returns inside the trailing window of w prices ending at that index. The
// window expands from the start of the series until w prices exist.
// returns[k] is the return from price k to price k+1.
func LocalEntropy(returns []float64, n, w, bins int, minSpan float64) []float64 {
	out := make([]float64, n)
	if w < 2 {
		w = 2
	}
	for i := 0; i < n; i++ {
		start := i - w + 1
		if start < 0 {
			start = 0
		}
		if i > len(returns) {
			break
		}
		out[i] = ShannonEntropy(returns[start:i], bins, minSpan)
	}
	return out
}
