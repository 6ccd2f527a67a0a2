package grid

import (
	"testing"

	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, PolicyServer, PolicyFor(TextFilter{Value: "a", Mode: TextContains}))
	assert.Equal(t, PolicyLocal, PolicyFor(TextFilter{Value: "a", Mode: TextStartsWith}))
	assert.Equal(t, PolicyLocal, PolicyFor(TextFilter{Mode: TextIsEmpty}))
	assert.Equal(t, PolicyServer, PolicyFor(RangeFilter{Min: dec("1")}))
	assert.Equal(t, PolicyServer, PolicyFor(DateFilter{}))
	assert.Equal(t, PolicyLocal, PolicyFor(DropdownFilter{Selected: "Blocked"}))
	assert.Equal(t, PolicyLocal, PolicyFor(ImageFilter{Bucket: ImageNone}))
}

func TestServerPredicates(t *testing.T) {
	reg := testRegistry(t)
	filters := map[string]FilterValue{
		"title":    TextFilter{Value: " ab ", Mode: TextContains},
		"sku":      TextFilter{Value: "X", Mode: TextEquals},
		"price":    RangeFilter{Min: dec("10"), Max: dec("20")},
		"blocked":  DropdownFilter{Selected: "Blocked"},
		"imageUrl": ImageFilter{Bucket: ImageNone},
	}

	preds := ServerPredicates(filters, reg)

	require.Len(t, preds, 3)
	assert.Equal(t, "price", preds[0].Field)
	assert.Equal(t, shared.OpGte, preds[0].Op)
	assert.Equal(t, shared.OpLte, preds[1].Op)
	assert.Equal(t, shared.Predicate{Field: "title", Op: shared.OpContains, Value: "ab"}, preds[2])
}

func TestFilterRows_IdempotentAgainstServerSubset(t *testing.T) {
	reg := testRegistry(t)
	filters := map[string]FilterValue{
		"title": TextFilter{Value: "ab", Mode: TextContains},
		"price": RangeFilter{Min: dec("10"), Max: dec("20")},
	}
	// rows as a server honouring the forwarded predicates would return them
	rows := []Row{
		row("A", "title", "xABy", "price", 15.0),
		row("B", "title", "ab", "price", 10),
	}

	once := FilterRows(rows, filters, reg)
	twice := FilterRows(once, filters, reg)

	assert.Equal(t, rows, once)
	assert.Equal(t, once, twice)
}
