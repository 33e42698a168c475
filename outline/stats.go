package outline

import "sort"

// FontStatistics summarizes the font size distribution of a document.
// The median size is taken as the body text size; headings are sized
// relative to it.
type FontStatistics struct {
	BodySize    float64
	MeanSize    float64
	UniqueSizes []float64
	SizeCounts  map[float64]int
	Percentiles map[int]float64
}

func AnalyzeFontDistribution(blocks []Block) FontStatistics {
	stats := FontStatistics{
		BodySize:    12.0,
		SizeCounts:  make(map[float64]int),
		Percentiles: make(map[int]float64),
	}
	if len(blocks) == 0 {
		return stats
	}

	sizes := make([]float64, 0, len(blocks))
	var sum float64
	for _, b := range blocks {
		sizes = append(sizes, b.FontSize)
		sum += b.FontSize
		stats.SizeCounts[b.FontSize]++
	}
	sort.Float64s(sizes)

	stats.BodySize = percentile(sizes, 50)
	stats.MeanSize = sum / float64(len(sizes))
	for _, p := range []int{25, 50, 75, 85, 90, 95} {
		stats.Percentiles[p] = percentile(sizes, p)
	}
	for size := range stats.SizeCounts {
		stats.UniqueSizes = append(stats.UniqueSizes, size)
	}
	sort.Float64s(stats.UniqueSizes)
	return stats
}

// percentile interpolates linearly over sorted values.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := float64(p) / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
