package outline

import "sort"

// FontClusterer groups font sizes into heading tiers. Sizes within
// tolerance of each other collapse into one cluster; clusters above the
// heading threshold rank into levels, largest first.
type FontClusterer struct {
	Tolerance float64
}

func NewFontClusterer() *FontClusterer {
	return &FontClusterer{Tolerance: 0.5}
}

// Cluster is one group of near-identical font sizes.
type Cluster struct {
	Size  float64 // representative (largest) size
	Count int
}

// Cluster merges the observed sizes into descending clusters.
func (fc *FontClusterer) Cluster(counts map[float64]int) []Cluster {
	sizes := make([]float64, 0, len(counts))
	for s := range counts {
		sizes = append(sizes, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	var clusters []Cluster
	for _, s := range sizes {
		if n := len(clusters); n > 0 && clusters[n-1].Size-s <= fc.Tolerance {
			clusters[n-1].Count += counts[s]
			continue
		}
		clusters = append(clusters, Cluster{Size: s, Count: counts[s]})
	}
	return clusters
}

// HeadingLevels maps each heading-sized cluster to a level (1-based).
// Clusters at or below bodySize*threshold are body text and get no level.
// At most maxLevel tiers are distinguished; smaller heading sizes merge
// into the deepest tier.
func (fc *FontClusterer) HeadingLevels(counts map[float64]int, bodySize, threshold float64, maxLevel int) map[float64]int {
	clusters := fc.Cluster(counts)
	cutoff := bodySize * threshold

	levels := make(map[float64]int)
	level := 0
	for _, c := range clusters {
		if c.Size < cutoff {
			break
		}
		if level < maxLevel {
			level++
		}
		for s := range counts {
			if s <= c.Size && c.Size-s <= fc.Tolerance {
				levels[s] = level
			}
		}
	}
	return levels
}
