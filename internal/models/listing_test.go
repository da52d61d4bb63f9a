package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCeiling(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *int
	}{
		{"plain", "5000", intPtr(5000)},
		{"thousands separator", "1,500", intPtr(1500)},
		{"padded", " 12,000 ", intPtr(12000)},
		{"empty means no ceiling", "", nil},
		{"non-numeric means no ceiling", "abc", nil},
		{"trailing junk means no ceiling", "12abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCeiling(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestImageFormula(t *testing.T) {
	assert.Equal(t, `=IMAGE("https://img.example/x.jpg",1)`, ImageFormula("https://img.example/x.jpg"))
	assert.Empty(t, ImageFormula(""))
}

func TestOutputRowValues(t *testing.T) {
	row := OutputRow{
		Code:      "k",
		Title:     "t",
		PriceText: "¥ 100",
		ImageCell: `=IMAGE("u",1)`,
		ItemURL:   "https://buyee.jp/mercari/item/m1",
		Timestamp: "2025-07-01 09:30:00",
	}

	assert.Equal(t, []interface{}{
		"k", "t", "¥ 100", `=IMAGE("u",1)`, "https://buyee.jp/mercari/item/m1", "2025-07-01 09:30:00",
	}, row.Values())
}

func intPtr(v int) *int {
	return &v
}
