package ncm

import (
	"errors"
	"strings"
)

// ErrMissingDetailKey is returned by detail lookups given neither an NCM
// nor an ITEM.
var ErrMissingDetailKey = errors.New("ncm: either ncm or item must be provided")

// FieldAll searches every column in SearchColumns.
const FieldAll = "ALL"

// MaxFilters is the number of filters SearchMulti honors.
const MaxFilters = 2

// SearchColumns are the columns an ALL search looks at.
var SearchColumns = []Column{ColItem, ColAnnex, ColProductDescription, ColNCM, ColTIPIDescription}

// SearchFieldNames lists the values a Filter.Field may name explicitly.
func SearchFieldNames() []string {
	names := make([]string, 0, len(SearchColumns)+1)
	for _, c := range SearchColumns {
		names = append(names, c.String())
	}
	return append(names, FieldAll)
}

// Filter is one (field, query) pair. An empty Field means ALL.
type Filter struct {
	Field string
	Query string
}

// Search returns the rows whose field contains query, comparing
// normalized forms. An empty query returns t unchanged; an unknown field
// matches nothing.
func Search(t *Table, query, field string) *Table {
	mask, ok := filterMask(t, Filter{Field: field, Query: query})
	if !ok {
		return t
	}
	return t.filter(mask)
}

// SearchMulti ANDs up to MaxFilters filters. Filters with an empty query are
// skipped; when none contributes, t is returned unchanged.
func SearchMulti(t *Table, filters []Filter) *Table {
	var combined []bool
	for i, f := range filters {
		if i == MaxFilters {
			break
		}
		mask, ok := filterMask(t, f)
		if !ok {
			continue
		}
		if combined == nil {
			combined = mask
			continue
		}
		for r := range combined {
			combined[r] = combined[r] && mask[r]
		}
	}
	if combined == nil {
		return t
	}
	return t.filter(combined)
}

// filterMask computes the match mask of one filter. ok is false when the
// filter's query is empty and it should not take part.
func filterMask(t *Table, f Filter) (mask []bool, ok bool) {
	q := NormalizeForCompare(f.Query)
	if q == "" {
		return nil, false
	}

	cols, known := resolveField(f.Field)
	mask = make([]bool, t.Len())
	if !known {
		return mask, true
	}
	for r := range mask {
		for _, c := range cols {
			if strings.Contains(t.key(r, c), q) {
				mask[r] = true
				break
			}
		}
	}
	return mask, true
}

// resolveField maps a filter field to the columns it searches.
func resolveField(field string) ([]Column, bool) {
	field = strings.TrimSpace(field)
	if field == "" || strings.EqualFold(field, FieldAll) {
		return SearchColumns, true
	}
	col, ok := CanonicalColumn(field)
	if !ok {
		return nil, false
	}
	return []Column{col}, true
}

// detailKey picks the column and compare key of a detail lookup. A value
// that normalizes to nothing, such as "-", counts as absent.
func detailKey(ncm, item string) (Column, string, error) {
	if key := NormalizeForCompare(ncm); key != "" {
		return ColNCM, key, nil
	}
	if key := NormalizeForCompare(item); key != "" {
		return ColItem, key, nil
	}
	return 0, "", ErrMissingDetailKey
}

// FindDetails returns rows whose NCM equals ncm after normalization, or,
// when ncm is empty, rows whose ITEM equals item. Neither given is an error.
func FindDetails(t *Table, ncm, item string) (*Table, error) {
	col, key, err := detailKey(ncm, item)
	if err != nil {
		return nil, err
	}

	mask := make([]bool, t.Len())
	for r := range mask {
		mask[r] = t.key(r, col) == key
	}
	return t.filter(mask), nil
}
