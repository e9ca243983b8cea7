package ncm

import "context"

// SearchRequest carries the parameters of a paged item search.
type SearchRequest struct {
	Query  string
	Field  string
	Query2 string
	Field2 string
	Page   int
	Limit  int
}

// Filters returns the request as SearchMulti filters.
func (r SearchRequest) Filters() []Filter {
	return []Filter{
		{Field: r.Field, Query: r.Query},
		{Field: r.Field2, Query: r.Query2},
	}
}

// SearchItems runs a paged search against the current table.
func (c *Cache) SearchItems(ctx context.Context, req SearchRequest) (Page, error) {
	t, err := c.Get(ctx)
	if err != nil {
		return Page{}, err
	}
	return Paginate(SearchMulti(t, req.Filters()), req.Page, req.Limit), nil
}

// GetDetails looks up rows by NCM, or by ITEM when ncm is empty.
func (c *Cache) GetDetails(ctx context.Context, ncm, item string) (Details, error) {
	if _, _, err := detailKey(ncm, item); err != nil {
		return Details{}, err
	}
	t, err := c.Get(ctx)
	if err != nil {
		return Details{}, err
	}
	found, err := FindDetails(t, ncm, item)
	if err != nil {
		return Details{}, err
	}
	rows := DetailRows(found)
	return Details{Count: len(rows), Data: rows}, nil
}
