package run

import (
	"fmt"
	"hash/fnv"
	"time"

	"vintageCRM/domain"
)

// datasetFingerprint identifies the input snapshot a run was computed
// from: same tenant data in, same fingerprint out. It hashes the entity
// counts and the newest order timestamp rather than full contents, which
// is enough to tell two runs' inputs apart in practice.
func datasetFingerprint(tenantCode string, clients []domain.Client, products []domain.Product, orders []domain.Order) string {
	var newest time.Time
	for _, o := range orders {
		if o.OrderedAt.After(newest) {
			newest = o.OrderedAt
		}
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d|%d|%d", tenantCode, len(clients), len(products), len(orders), newest.UnixNano())

	return fmt.Sprintf("%016x", h.Sum64())
}
