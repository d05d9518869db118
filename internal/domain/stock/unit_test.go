package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldledger/internal/core/apperror"
)

func TestNewVariety(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Variety
	}{
		{"already canonical", "Pukhraj", "Pukhraj"},
		{"lowercase", "pukhraj", "Pukhraj"},
		{"uppercase", "PUKHRAJ", "Pukhraj"},
		{"internal whitespace", "kufri jyoti", "Kufri-jyoti"},
		{"whitespace run", "kufri   jyoti", "Kufri-jyoti"},
		{"surrounding whitespace", "  pukhraj  ", "Pukhraj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewVariety(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewVariety_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := NewVariety(raw)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestNewBagSize(t *testing.T) {
	got, err := NewBagSize("cut tok")
	require.NoError(t, err)
	assert.Equal(t, BagSize("Cut-tok"), got)

	got, err = NewBagSize("NUMBER 12")
	require.NoError(t, err)
	assert.Equal(t, BagSize("Number-12"), got)
}

func TestLineValidate(t *testing.T) {
	tests := []struct {
		name    string
		line    Line
		wantErr bool
	}{
		{"valid", Line{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 60}, false},
		{"full", Line{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 100}, false},
		{"drained", Line{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 0}, false},
		{"negative initial", Line{Variety: "Pukhraj", Size: "Goli", Initial: -1, Current: 0}, true},
		{"negative current", Line{Variety: "Pukhraj", Size: "Goli", Initial: 10, Current: -1}, true},
		{"current above initial", Line{Variety: "Pukhraj", Size: "Goli", Initial: 10, Current: 11}, true},
		{"missing variety", Line{Size: "Goli", Initial: 10, Current: 10}, true},
		{"missing size", Line{Variety: "Pukhraj", Initial: 10, Current: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeLines(t *testing.T) {
	lines, err := NormalizeLines([]Line{
		{Variety: "pukhraj", Size: "goli", Initial: 100, Current: 100},
		{Variety: "pukhraj", Size: "seed", Initial: 0, Current: 0}, // dropped
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, Variety("Pukhraj"), lines[0].Variety)
	assert.Equal(t, BagSize("Goli"), lines[0].Size)
}

func TestNormalizeLines_AllZero(t *testing.T) {
	_, err := NormalizeLines([]Line{
		{Variety: "pukhraj", Size: "goli", Initial: 0, Current: 0},
		{Variety: "pukhraj", Size: "seed", Initial: 0, Current: 0},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestNormalizeLines_Negative(t *testing.T) {
	_, err := NormalizeLines([]Line{
		{Variety: "pukhraj", Size: "goli", Initial: 10, Current: -2},
	})
	require.Error(t, err)
}

func TestTotalCurrent(t *testing.T) {
	lines := []Line{
		{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 60},
		{Variety: "Pukhraj", Size: "Seed", Initial: 50, Current: 50},
	}
	assert.Equal(t, int64(110), TotalCurrent(lines))
	assert.Equal(t, int64(0), TotalCurrent(nil))
}
