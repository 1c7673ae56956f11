package scoring

import "vintageCRM/domain"

// Tier boundaries. Each dimension maps onto 1..5 where 5 is best; minTier
// is what zero-order clients receive on every dimension.
const (
	minTier = 1
	maxTier = 5
)

func recencyTier(days int) int {
	switch {
	case days <= 7:
		return 5
	case days <= 30:
		return 4
	case days <= 90:
		return 3
	case days <= 180:
		return 2
	default:
		return 1
	}
}

func frequencyTier(orders int) int {
	switch {
	case orders >= 20:
		return 5
	case orders >= 10:
		return 4
	case orders >= 5:
		return 3
	case orders >= 2:
		return 2
	default:
		return 1
	}
}

func monetaryTier(total float64) int {
	switch {
	case total >= 5000:
		return 5
	case total >= 2000:
		return 4
	case total >= 500:
		return 3
	case total >= 100:
		return 2
	default:
		return 1
	}
}

// segmentFor maps a tier triplet onto the segment vocabulary. The cases are
// checked best-first so a client always lands in the strongest label it
// qualifies for.
func segmentFor(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return domain.SegmentChampions
	case r >= 3 && f >= 3:
		return domain.SegmentLoyal
	case r >= 4:
		return domain.SegmentNew
	case r == 3:
		return domain.SegmentPotential
	case r == 2 && (f >= 3 || m >= 3):
		return domain.SegmentAtRisk
	case r == 2:
		return domain.SegmentHibernating
	case f >= 4 || m >= 4:
		return domain.SegmentAtRisk
	default:
		return domain.SegmentLost
	}
}
