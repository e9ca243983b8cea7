package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/ncmlookup/internal/ncm"
)

// Search paging limits.
const (
	DefaultPageSize = 15
	MaxPageSize     = 200
)

// searchParams are the query parameters of GET /itens/search.
type searchParams struct {
	Query  string `query:"q"`
	Field  string `query:"field" validate:"searchfield"`
	Query2 string `query:"q2"`
	Field2 string `query:"field2" validate:"omitempty,searchfield"`
	Page   int    `query:"page" validate:"gte=1"`
	Limit  int    `query:"limit" validate:"gte=1,lte=200"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleItemsHealth reports the spreadsheet cache without triggering a load.
func (s *Server) handleItemsHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.items.Status())
}

// handleSearchItems filters the item table with up to two ANDed filters.
func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := searchParams{
		Query:  q.Get("q"),
		Field:  q.Get("field"),
		Query2: q.Get("q2"),
		Field2: q.Get("field2"),
	}
	if params.Field == "" {
		params.Field = ncm.FieldAll
	}

	var err error
	if params.Page, err = queryInt(r, "page", 1); err != nil {
		respondError(w, r, err)
		return
	}
	if params.Limit, err = queryInt(r, "limit", DefaultPageSize); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.validateStruct(params); err != nil {
		respondError(w, r, err)
		return
	}

	page, err := s.items.SearchItems(r.Context(), ncm.SearchRequest{
		Query:  params.Query,
		Field:  params.Field,
		Query2: params.Query2,
		Field2: params.Field2,
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, page)
}

// handleItemDetails looks rows up by exact NCM, or by ITEM when ncm is empty.
func (s *Server) handleItemDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	details, err := s.items.GetDetails(r.Context(), strings.TrimSpace(q.Get("ncm")), strings.TrimSpace(q.Get("item")))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, details)
}

// handleReloadItems rebuilds the table from disk regardless of mtime.
func (s *Server) handleReloadItems(w http.ResponseWriter, r *http.Request) {
	if _, err := s.items.ForceReload(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, s.items.Status())
}
