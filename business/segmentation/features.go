package segmentation

import (
	"math"

	"vintageCRM/domain"
)

// Feature columns: recency days, order frequency, monetary total, budget
// band, average order value. Recency is inverted so that a larger value
// always means a more engaged client across every column.
const featureCount = 5

func buildFeatureMatrix(clients []domain.Client, avgOrder map[string]float64) [][]float64 {
	matrix := make([][]float64, len(clients))
	for i, c := range clients {
		matrix[i] = []float64{
			-float64(c.RecencyDays),
			float64(c.Frequency),
			c.Monetary,
			c.BudgetBand,
			avgOrder[c.Code],
		}
	}

	return matrix
}

// standardize rescales every column to zero mean and unit variance in
// place. A constant column carries no distance information and is zeroed
// instead of divided by a zero deviation.
func standardize(matrix [][]float64) {
	if len(matrix) == 0 {
		return
	}

	n := float64(len(matrix))
	for col := 0; col < featureCount; col++ {
		mean := 0.0
		for _, row := range matrix {
			mean += row[col]
		}
		mean /= n

		variance := 0.0
		for _, row := range matrix {
			d := row[col] - mean
			variance += d * d
		}
		variance /= n

		dev := math.Sqrt(variance)
		for _, row := range matrix {
			if dev == 0 {
				row[col] = 0
				continue
			}
			row[col] = (row[col] - mean) / dev
		}
	}
}
