package knowledge

import (
	"math"
	"sort"

	"github.com/trigtutor/tutor/embedding"
)

const (
	thresholdSampleRows   = 100
	thresholdSampleWindow = 20
	thresholdPercentile   = 80
)

// LearnThreshold derives the similarity threshold as the 80th percentile of
// the cosine similarities between each of the first 100 entries and the
// entries that follow it within a window of 20. It returns DefaultThreshold
// when fewer than two entries carry embeddings.
func LearnThreshold(entries []Entry) float64 {
	n := len(entries)
	var sims []float64
	for i := 0; i < min(thresholdSampleRows, n); i++ {
		for j := i + 1; j < min(i+thresholdSampleWindow, n); j++ {
			a, b := entries[i].Embedding, entries[j].Embedding
			if len(a) == 0 || len(b) == 0 {
				continue
			}
			sims = append(sims, embedding.Cosine(a, b))
		}
	}
	if len(sims) == 0 {
		return DefaultThreshold
	}
	return Percentile(sims, thresholdPercentile)
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. values is sorted in place.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sort.Float64s(values)
	pos := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(pos))
	if lo >= len(values)-1 {
		return values[len(values)-1]
	}
	frac := pos - float64(lo)
	return values[lo] + frac*(values[lo+1]-values[lo])
}
