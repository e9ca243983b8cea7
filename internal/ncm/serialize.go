package ncm

import (
	"math"
	"strconv"
	"strings"
)

// ItemRow is the wire form of a search result row. Keys keep the workbook's
// canonical header names, which the frontend reads as-is.
type ItemRow struct {
	Item               string `json:"ITEM"`
	Annex              string `json:"ANEXO"`
	ProductDescription string `json:"DESCRIÇÃO DO PRODUTO"`
	NCM                string `json:"NCM"`
	TIPIDescription    string `json:"DESCRIÇÃO TIPI"`
	CST                string `json:"CST IBS E CBS"`
	CClassTrib         string `json:"CCLASSTRIB"`
	FullDescription    string `json:"DESCRIÇÃO COMPLETA"`
	IBS                string `json:"IBS"`
	CBS                string `json:"CBS"`
}

// DetailRow is the wire form of a detail lookup row.
type DetailRow struct {
	Annex              string `json:"ANEXO"`
	Item               string `json:"ITEM"`
	NCM                string `json:"NCM"`
	ProductDescription string `json:"DESCRIÇÃO DO PRODUTO"`
	FullDescription    string `json:"DESCRIÇÃO COMPLETA"`
	IBS                string `json:"IBS"`
	CBS                string `json:"CBS"`
}

// NewItemRow applies NormalizeVisible to every field of r.
func NewItemRow(r Row) ItemRow {
	v := func(c Column) string { return NormalizeVisible(r[c]) }
	return ItemRow{
		Item:               v(ColItem),
		Annex:              v(ColAnnex),
		ProductDescription: v(ColProductDescription),
		NCM:                v(ColNCM),
		TIPIDescription:    v(ColTIPIDescription),
		CST:                v(ColCST),
		CClassTrib:         v(ColCClassTrib),
		FullDescription:    v(ColFullDescription),
		IBS:                v(ColIBS),
		CBS:                v(ColCBS),
	}
}

// NewDetailRow builds a detail row, rendering the IBS and CBS rates as
// percent strings.
func NewDetailRow(r Row) DetailRow {
	v := func(c Column) string { return NormalizeVisible(r[c]) }
	return DetailRow{
		Annex:              v(ColAnnex),
		Item:               v(ColItem),
		NCM:                v(ColNCM),
		ProductDescription: v(ColProductDescription),
		FullDescription:    v(ColFullDescription),
		IBS:                FormatPercent(r[ColIBS]),
		CBS:                FormatPercent(r[ColCBS]),
	}
}

// ItemRows serializes every row of t.
func ItemRows(t *Table) []ItemRow {
	out := make([]ItemRow, t.Len())
	for i := range out {
		out[i] = NewItemRow(t.rows[i])
	}
	return out
}

// DetailRows serializes every row of t for detail responses.
func DetailRows(t *Table) []DetailRow {
	out := make([]DetailRow, t.Len())
	for i := range out {
		out[i] = NewDetailRow(t.rows[i])
	}
	return out
}

// FormatPercent renders a rate cell as a percent string. Values between 0
// and 1 inclusive are read as fractions. Whole results print without
// decimals, others with at most two. Cells that are not numbers come back
// unchanged.
//
// A genuine rate below 1% (say "0.5" meaning half a percent) is
// indistinguishable from a fraction and renders as "50%".
func FormatPercent(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return raw
	}
	if n >= 0 && n <= 1 {
		n *= 100
	}
	if n == math.Trunc(n) {
		return strconv.FormatFloat(n, 'f', 0, 64) + "%"
	}
	out := strconv.FormatFloat(n, 'f', 2, 64)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	return out + "%"
}

// Page is one page of search results.
type Page struct {
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	TotalItems int       `json:"total_items"`
	Data       []ItemRow `json:"data"`
}

// Paginate cuts page number page of size limit out of t. The page is
// clamped into [1, total_pages] and total_pages is never below 1.
func Paginate(t *Table, page, limit int) Page {
	limit = max(limit, 1)
	total := t.Len()
	pages := max(1, (total+limit-1)/limit)
	page = min(max(page, 1), pages)

	start := (page - 1) * limit
	return Page{
		Page:       page,
		TotalPages: pages,
		TotalItems: total,
		Data:       ItemRows(t.Slice(start, start+limit)),
	}
}

// Details is the response of a detail lookup.
type Details struct {
	Count int         `json:"count"`
	Data  []DetailRow `json:"data"`
}
