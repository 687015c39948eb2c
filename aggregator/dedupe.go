package aggregator

import (
	"strings"

	"vocab-updated/models"
)

// fingerprintLen is the number of leading characters considered when
// collapsing near-duplicates. Deliberately cheap and order-sensitive:
// differently phrased near-duplicates from different sources stay distinct.
const fingerprintLen = 60

// Dedupe drops items whose fingerprint was already seen, keeping the first
// occurrence in input order. Idempotent.
func Dedupe(items []models.RawItem) []models.RawItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.RawItem, 0, len(items))
	for _, item := range items {
		fp := fingerprint(item)
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, item)
	}
	return out
}

func fingerprint(item models.RawItem) string {
	text := item.Text()
	if rs := []rune(text); len(rs) > fingerprintLen {
		text = string(rs[:fingerprintLen])
	}
	return strings.ToLower(text)
}
