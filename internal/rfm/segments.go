package rfm

import (
	"fmt"
	"math"
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Segment names by rank. Rank 0 is the cluster with the highest mean
// monetary value; ranks beyond the named ones get a numbered fallback.
var segmentNames = []string{"Champions", "Loyal", "Recent", "At Risk"}

// SegmentName returns the display name for a segment rank.
func SegmentName(rank int) string {
	if rank >= 0 && rank < len(segmentNames) {
		return segmentNames[rank]
	}
	return fmt.Sprintf("Segment %d", rank+1)
}

// Standardize z-scores a feature column. A constant column (zero standard
// deviation) maps to all zeros instead of dividing by it.
func Standardize(values []float64) []float64 {
	n := float64(len(values))
	if n == 0 {
		return nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / n)

	scaled := make([]float64, len(values))
	if std == 0 {
		return scaled
	}
	for i, v := range values {
		scaled[i] = (v - mean) / std
	}
	return scaled
}

// observation ties a feature vector back to its client index so cluster
// membership can be recovered after partitioning.
type observation struct {
	idx    int
	coords clusters.Coordinates
}

func (o observation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o observation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Cluster partitions clients into k segments over standardized (recency,
// frequency, monetary) features and returns one segment rank per client,
// aligned with the input slice. Clusters are ranked by descending mean
// monetary value, so rank 0 is the highest-value segment.
func Cluster(clients []ClientRFM, k int) ([]int, error) {
	if len(clients) < k {
		return nil, fmt.Errorf("cannot build %d segments from %d clients", k, len(clients))
	}

	recency := make([]float64, len(clients))
	frequency := make([]float64, len(clients))
	monetary := make([]float64, len(clients))
	for i, c := range clients {
		recency[i] = float64(c.Recency)
		frequency[i] = float64(c.Frequency)
		monetary[i] = c.Monetary
	}
	recency = Standardize(recency)
	frequency = Standardize(frequency)
	monetary = Standardize(monetary)

	var obs clusters.Observations
	for i := range clients {
		obs = append(obs, observation{
			idx:    i,
			coords: clusters.Coordinates{recency[i], frequency[i], monetary[i]},
		})
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("k-means partitioning failed: %w", err)
	}

	// Recover membership, then rank clusters by mean monetary value.
	clusterOf := make([]int, len(clients))
	type clusterStat struct {
		id    int
		mean  float64
		count int
	}
	stats := make([]clusterStat, len(partition))
	for ci, cluster := range partition {
		stats[ci].id = ci
		for _, o := range cluster.Observations {
			idx := o.(observation).idx
			clusterOf[idx] = ci
			stats[ci].mean += clients[idx].Monetary
			stats[ci].count++
		}
		if stats[ci].count > 0 {
			stats[ci].mean /= float64(stats[ci].count)
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].mean > stats[j].mean })

	rankOf := make(map[int]int, len(stats))
	for rank, s := range stats {
		rankOf[s.id] = rank
	}

	ranks := make([]int, len(clients))
	for i, ci := range clusterOf {
		ranks[i] = rankOf[ci]
	}
	return ranks, nil
}
