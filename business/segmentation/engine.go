package segmentation

import (
	"sort"
	"strconv"

	"vintageCRM/domain"
)

// Engine partitions scored clients into k behavioral clusters. Clustering
// is deterministic: identical inputs and k always produce identical
// assignments, so a recompute never shuffles clients between clusters.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Cluster assigns a 1-based cluster id to every client and returns the
// cluster size distribution. k below 2 is rejected before any computation;
// fewer clients than k degenerates to one client per cluster.
func (e *Engine) Cluster(clients []domain.Client, orders []domain.Order, k int) ([]domain.Client, []domain.DistributionRow, error) {
	if k < 2 {
		return nil, nil, domain.ErrInvalidClusterCount
	}

	clustered := make([]domain.Client, len(clients))
	copy(clustered, clients)

	// Fixed input order makes seeding and tie-breaks reproducible.
	sort.Slice(clustered, func(i, j int) bool {
		return clustered[i].Code < clustered[j].Code
	})

	if len(clustered) == 0 {
		return clustered, nil, nil
	}

	if len(clustered) < k {
		// Degenerate clustering: every client is its own cluster.
		for i := range clustered {
			clustered[i].ClusterID = i + 1
		}
		return clustered, distribution(clustered), nil
	}

	avgOrder := averageOrderValues(orders)

	matrix := buildFeatureMatrix(clustered, avgOrder)
	standardize(matrix)

	assignments := kMeans(matrix, k)
	for i := range clustered {
		clustered[i].ClusterID = assignments[i] + 1
	}

	return clustered, distribution(clustered), nil
}

func distribution(clients []domain.Client) []domain.DistributionRow {
	counts := make(map[int]int64)
	maxID := 0
	for _, c := range clients {
		counts[c.ClusterID]++
		if c.ClusterID > maxID {
			maxID = c.ClusterID
		}
	}

	rows := make([]domain.DistributionRow, 0, len(counts))
	for id := 1; id <= maxID; id++ {
		if n, ok := counts[id]; ok {
			rows = append(rows, domain.DistributionRow{
				Label: strconv.Itoa(id),
				Count: n,
			})
		}
	}

	return rows
}

func averageOrderValues(orders []domain.Order) map[string]float64 {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, o := range orders {
		totals[o.ClientCode] += o.Total
		counts[o.ClientCode]++
	}

	avg := make(map[string]float64, len(totals))
	for code, total := range totals {
		avg[code] = total / float64(counts[code])
	}

	return avg
}
