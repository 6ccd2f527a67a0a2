package grid

import (
	"slices"
	"strings"

	"github.com/catalogsync/backend/internal/domain/shared"
)

// Policy says where a filter is evaluated
type Policy string

const (
	PolicyServer Policy = "server"
	PolicyLocal  Policy = "local"
)

// PolicyFor returns the evaluation policy of a filter value.
//
//	text contains      server  field contains value (case-insensitive)
//	text other modes   local
//	range              server  field >= min, field <= max
//	date               server  field >= from, field <= to
//	dropdown, image    local
//
// Local evaluation always runs as well, so a server-side filter is
// applied twice with the same result.
func PolicyFor(v FilterValue) Policy {
	switch f := v.(type) {
	case TextFilter:
		if f.Mode == TextContains || f.Mode == "" {
			return PolicyServer
		}
	case RangeFilter, DateFilter:
		return PolicyServer
	}
	return PolicyLocal
}

// ServerPredicates translates the server-evaluable part of a filter set.
// Predicates are ordered by column id so equal filter sets produce equal
// queries.
func ServerPredicates(filters map[string]FilterValue, registry *Registry) []shared.Predicate {
	ids := make([]string, 0, len(filters))
	for id := range filters {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var preds []shared.Predicate
	for _, id := range ids {
		v := filters[id]
		col, ok := registry.Get(id)
		if !ok || IsDefault(v) || PolicyFor(v) != PolicyServer {
			continue
		}
		field := col.Field()

		switch f := v.(type) {
		case TextFilter:
			preds = append(preds, shared.Predicate{Field: field, Op: shared.OpContains, Value: strings.TrimSpace(f.Value)})
		case RangeFilter:
			if f.Min != nil {
				preds = append(preds, shared.Predicate{Field: field, Op: shared.OpGte, Value: *f.Min})
			}
			if f.Max != nil {
				preds = append(preds, shared.Predicate{Field: field, Op: shared.OpLte, Value: *f.Max})
			}
		case DateFilter:
			if f.From != nil {
				preds = append(preds, shared.Predicate{Field: field, Op: shared.OpGte, Value: *f.From})
			}
			if f.To != nil {
				preds = append(preds, shared.Predicate{Field: field, Op: shared.OpLte, Value: *f.To})
			}
		}
	}
	return preds
}
