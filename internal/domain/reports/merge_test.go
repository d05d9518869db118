package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_OuterJoinDefaults(t *testing.T) {
	receipts := []ReceiptAggRow{
		{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 60},
		{Variety: "Pukhraj", Size: "Cut-tok", Initial: 50, Current: 50},
	}
	deliveries := []DeliveryAggRow{
		{Variety: "Pukhraj", Size: "Goli", Removed: 40},
		// Source receipt was removed; only the delivery side remains.
		{Variety: "Badshah", Size: "Ration", Removed: 15},
	}

	out := Merge(receipts, deliveries)
	require.Len(t, out, 2)

	assert.Equal(t, VarietySummary{
		Variety: "Badshah",
		Sizes:   []SizeSummary{{Size: "Ration", Initial: 0, Current: 0, Removed: 15}},
	}, out[0])

	assert.Equal(t, VarietySummary{
		Variety: "Pukhraj",
		Sizes: []SizeSummary{
			{Size: "Cut-tok", Initial: 50, Current: 50, Removed: 0},
			{Size: "Goli", Initial: 100, Current: 60, Removed: 40},
		},
	}, out[1])
}

func TestMerge_ConservationByConstruction(t *testing.T) {
	receipts := []ReceiptAggRow{
		{Variety: "Pukhraj", Size: "Goli", Initial: 150, Current: 105},
		{Variety: "Kufri-jyoti", Size: "Number-12", Initial: 30, Current: 0},
	}
	deliveries := []DeliveryAggRow{
		{Variety: "Pukhraj", Size: "Goli", Removed: 45},
		{Variety: "Kufri-jyoti", Size: "Number-12", Removed: 30},
	}

	for _, v := range Merge(receipts, deliveries) {
		for _, s := range v.Sizes {
			assert.Equal(t, s.Initial-s.Removed, s.Current,
				"initial minus removed must equal current for %s/%s", v.Variety, s.Size)
		}
	}
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))

	out := Merge(nil, []DeliveryAggRow{{Variety: "Pukhraj", Size: "Goli", Removed: 5}})
	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].Sizes[0].Current)
}

func TestMerge_StableAcrossCalls(t *testing.T) {
	receipts := []ReceiptAggRow{
		{Variety: "Pukhraj", Size: "Goli", Initial: 10, Current: 10},
		{Variety: "Badshah", Size: "Goli", Initial: 20, Current: 20},
		{Variety: "Badshah", Size: "Ration", Initial: 5, Current: 5},
	}

	first := Merge(receipts, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Merge(receipts, nil))
	}
}

func TestTotalCurrent(t *testing.T) {
	summaries := Merge([]ReceiptAggRow{
		{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 60},
		{Variety: "Badshah", Size: "Ration", Initial: 40, Current: 15},
	}, nil)

	assert.Equal(t, int64(75), TotalCurrent(summaries))
}
