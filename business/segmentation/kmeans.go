package segmentation

import "math"

const maxIterations = 50

// kMeans clusters the rows of matrix into k groups and returns a 0-based
// assignment per row. Seeding is farthest-point from the first row, so
// the whole procedure is deterministic. Callers guarantee len(matrix) >= k.
func kMeans(matrix [][]float64, k int) []int {
	centroids := seedCentroids(matrix, k)
	assignments := make([]int, len(matrix))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, row := range matrix {
			best := nearestCentroid(row, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		recomputeCentroids(matrix, assignments, centroids)
	}

	return assignments
}

// seedCentroids picks the first row, then repeatedly the row farthest from
// its nearest chosen centroid. Ties resolve to the lowest row index.
func seedCentroids(matrix [][]float64, k int) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneRow(matrix[0]))

	for len(centroids) < k {
		farthest := 0
		farthestDist := -1.0
		for i, row := range matrix {
			d := math.Inf(1)
			for _, c := range centroids {
				if dist := squaredDistance(row, c); dist < d {
					d = dist
				}
			}
			if d > farthestDist {
				farthestDist = d
				farthest = i
			}
		}
		centroids = append(centroids, cloneRow(matrix[farthest]))
	}

	return centroids
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := squaredDistance(row, c); d < bestDist {
			bestDist = d
			best = i
		}
	}

	return best
}

// recomputeCentroids moves each centroid to the mean of its members. A
// centroid that lost all members keeps its previous position.
func recomputeCentroids(matrix [][]float64, assignments []int, centroids [][]float64) {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, len(centroids[i]))
	}

	for i, row := range matrix {
		cluster := assignments[i]
		counts[cluster]++
		for col, v := range row {
			sums[cluster][col] += v
		}
	}

	for i := range centroids {
		if counts[i] == 0 {
			continue
		}
		for col := range centroids[i] {
			centroids[i][col] = sums[i][col] / float64(counts[i])
		}
	}
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return sum
}

func cloneRow(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)

	return out
}
