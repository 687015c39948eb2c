package aggregator

import (
	"sort"

	"vocab-updated/models"
)

// Rank orders items by descending engagement. The sort is stable so ties
// keep their merge order, which is the configured source priority order.
// Engagement values are compared as-is; each adapter already normalized its
// provider's signal.
func Rank(items []models.RawItem) []models.RawItem {
	out := make([]models.RawItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Engagement > out[j].Engagement
	})
	return out
}
