package reports

import (
	"sort"

	"coldledger/internal/domain/stock"
)

type lineKey struct {
	variety stock.Variety
	size    stock.BagSize
}

// Merge outer-joins the two grouped result sets on (variety, size).
// A key present only on the receipt side gets Removed 0; a key present
// only on the delivery side gets Initial and Current 0 (its source
// receipt was administratively removed). Output is sorted by variety
// then size so repeated calls over the same data compare equal.
func Merge(receipts []ReceiptAggRow, deliveries []DeliveryAggRow) []VarietySummary {
	merged := make(map[lineKey]SizeSummary)

	for _, r := range receipts {
		k := lineKey{r.Variety, r.Size}
		s := merged[k]
		s.Size = r.Size
		s.Initial += r.Initial
		s.Current += r.Current
		merged[k] = s
	}

	for _, d := range deliveries {
		k := lineKey{d.Variety, d.Size}
		s := merged[k]
		s.Size = d.Size
		s.Removed += d.Removed
		merged[k] = s
	}

	byVariety := make(map[stock.Variety][]SizeSummary)
	for k, s := range merged {
		byVariety[k.variety] = append(byVariety[k.variety], s)
	}

	out := make([]VarietySummary, 0, len(byVariety))
	for v, sizes := range byVariety {
		sort.Slice(sizes, func(i, j int) bool { return sizes[i].Size < sizes[j].Size })
		out = append(out, VarietySummary{Variety: v, Sizes: sizes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variety < out[j].Variety })

	return out
}

// TotalCurrent sums current quantities across a merged summary.
func TotalCurrent(summaries []VarietySummary) int64 {
	var total int64
	for _, v := range summaries {
		for _, s := range v.Sizes {
			total += s.Current
		}
	}
	return total
}
