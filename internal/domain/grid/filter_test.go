package grid

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterValue_JSON(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)

	tests := []struct {
		name  string
		value FilterValue
		want  string
	}{
		{"text", TextFilter{Value: "lamp", Mode: TextStartsWith}, `{"kind":"text","value":"lamp","mode":"startsWith"}`},
		{"range", RangeFilter{Min: dec("10.5")}, `{"kind":"range","min":"10.5"}`},
		{"date", DateFilter{From: &from, To: &to}, `{"kind":"date","from":"2024-03-01T00:00:00Z","to":"2024-03-31T23:59:59.999999999Z"}`},
		{"dropdown", DropdownFilter{Selected: "Approved"}, `{"kind":"dropdown","selected":"Approved"}`},
		{"image", ImageFilter{Bucket: ImageTwoOrMore}, `{"kind":"image","bucket":"twoOrMore"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}

	t.Run("encoded filters decode back to the same value", func(t *testing.T) {
		filters := map[string]FilterValue{
			"price":     RangeFilter{Min: dec("10.5"), Max: dec("20")},
			"createdAt": DateFilter{From: &from, To: &to},
		}
		data, err := json.Marshal(filters)
		require.NoError(t, err)

		var wire map[string]struct {
			Kind FilterKind `json:"kind"`
			RawFilter
		}
		require.NoError(t, json.Unmarshal(data, &wire))
		for id, want := range filters {
			got, err := DecodeFilter(wire[id].Kind, wire[id].RawFilter)
			require.NoError(t, err)
			switch w := want.(type) {
			case RangeFilter:
				g := got.(RangeFilter)
				assert.True(t, w.Min.Equal(*g.Min))
				assert.True(t, w.Max.Equal(*g.Max))
			case DateFilter:
				g := got.(DateFilter)
				assert.True(t, w.From.Equal(*g.From))
				assert.True(t, w.To.Equal(*g.To))
			}
		}
	})
}
