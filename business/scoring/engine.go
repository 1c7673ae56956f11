package scoring

import (
	"fmt"
	"time"

	"vintageCRM/domain"
)

// clientStats aggregates a client's order history inside the lookback
// window.
type clientStats struct {
	lastOrder time.Time
	orders    int
	monetary  float64
}

// Engine computes recency/frequency/monetary metrics and the derived
// segment label per client. It is a pure computation over the inputs; the
// orchestrator persists the results.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Score returns a copy of clients with recency/frequency/monetary, the
// composite RFM score and the segment label filled in from the given order
// history. Orders outside the lookback window are ignored. Clients without
// any order in the window land in the Inactive segment with minimum tiers
// rather than being excluded.
func (e *Engine) Score(clients []domain.Client, orders []domain.Order, now time.Time, lookbackDays int) []domain.Client {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	windowStart := now.AddDate(0, 0, -lookbackDays)

	stats := make(map[string]*clientStats, len(clients))
	for _, o := range orders {
		if o.OrderedAt.Before(windowStart) || o.OrderedAt.After(now) {
			continue
		}

		st, ok := stats[o.ClientCode]
		if !ok {
			st = &clientStats{}
			stats[o.ClientCode] = st
		}

		st.orders++
		st.monetary += o.Total
		if o.OrderedAt.After(st.lastOrder) {
			st.lastOrder = o.OrderedAt
		}
	}

	scored := make([]domain.Client, len(clients))
	for i, c := range clients {
		st := stats[c.Code]

		if st == nil || st.orders == 0 {
			// No purchase inside the window: minimum tiers, dedicated
			// segment, recency pinned to the window edge.
			c.RecencyDays = lookbackDays
			c.Frequency = 0
			c.Monetary = 0
			c.RFMScore = fmt.Sprintf("%d%d%d", minTier, minTier, minTier)
			c.RFMSegment = domain.SegmentInactive
			scored[i] = c
			continue
		}

		c.RecencyDays = int(now.Sub(st.lastOrder).Hours() / 24)
		if c.RecencyDays < 0 {
			c.RecencyDays = 0
		}
		c.Frequency = st.orders
		c.Monetary = st.monetary

		r := recencyTier(c.RecencyDays)
		f := frequencyTier(c.Frequency)
		m := monetaryTier(c.Monetary)

		c.RFMScore = fmt.Sprintf("%d%d%d", r, f, m)
		c.RFMSegment = segmentFor(r, f, m)

		scored[i] = c
	}

	return scored
}
