package usecase

import (
	"slices"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
)

type MergeStats struct {
	Updated  int `json:"updated"`
	Kept     int `json:"kept"`
	Appended int `json:"appended"`
}

// MergeFixtureTable reconciles fetched records into the existing table.
//
// Each existing row takes the values of the first still-pending fetched
// record with the same fixture ID, in place; that record is then consumed.
// Rows without a match are kept untouched. Whatever is left pending is
// appended in fetch order, so duplicate IDs in one fetch can append twice.
// The scan is quadratic, which is fine for tables of a few hundred rows.
func MergeFixtureTable(existing fixture.Table, fetched []fixture.Record) (fixture.Table, MergeStats) {
	pending := slices.Clone(fetched)
	out := make(fixture.Table, 0, len(existing)+len(fetched))

	var stats MergeStats
	for _, row := range existing {
		idx := slices.IndexFunc(pending, func(r fixture.Record) bool {
			return r.FixtureID == row.FixtureID
		})
		if idx < 0 {
			out = append(out, row)
			stats.Kept++
			continue
		}
		out = append(out, pending[idx])
		pending = slices.Delete(pending, idx, idx+1)
		stats.Updated++
	}

	out = append(out, pending...)
	stats.Appended = len(pending)
	return out, stats
}
