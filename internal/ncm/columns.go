package ncm

import "strings"

// Column identifies one canonical column of the normalized table.
type Column int

// Canonical columns, in table order.
const (
	ColItem Column = iota
	ColAnnex
	ColProductDescription
	ColNCM
	ColTIPIDescription
	ColCST
	ColCClassTrib
	ColFullDescription
	ColIBS
	ColCBS

	numColumns
)

var columnNames = [numColumns]string{
	ColItem:               "ITEM",
	ColAnnex:              "ANEXO",
	ColProductDescription: "DESCRIÇÃO DO PRODUTO",
	ColNCM:                "NCM",
	ColTIPIDescription:    "DESCRIÇÃO TIPI",
	ColCST:                "CST IBS E CBS",
	ColCClassTrib:         "CCLASSTRIB",
	ColFullDescription:    "DESCRIÇÃO COMPLETA",
	ColIBS:                "IBS",
	ColCBS:                "CBS",
}

// String returns the canonical header name.
func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return "UNKNOWN"
	}
	return columnNames[c]
}

// Valid reports whether c is a canonical column.
func (c Column) Valid() bool {
	return c >= 0 && c < numColumns
}

// Columns returns every canonical column in table order.
func Columns() []Column {
	cols := make([]Column, numColumns)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}

// ColumnNames returns the canonical header names in table order.
func ColumnNames() []string {
	return append([]string(nil), columnNames[:]...)
}

// columnSynonyms covers header spellings seen in published versions of the
// workbook. New spellings must be added here or the column maps to nothing.
var columnSynonyms = []struct {
	raw string
	col Column
}{
	{"descricao completa", ColFullDescription},
	{"descricao do produto completa", ColFullDescription},
	{"descricao_produto_completa", ColFullDescription},
	{"base legal", ColFullDescription},

	{"ibs,cbs", ColCST},
	{"cst ibs cbs", ColCST},

	{"descricao tipi", ColTIPIDescription},
	{"descricao da tipi", ColTIPIDescription},
	{"descricao_tipi", ColTIPIDescription},
	{"desc tipi", ColTIPIDescription},

	{"ibs", ColIBS},
	{"cbs", ColCBS},
}

type columnKey struct {
	key string
	col Column
}

// columnKeys is the ordered lookup: canonical names first, then synonyms.
// A synonym whose key repeats an earlier one replaces the target but keeps
// the earlier position, so prefix matching order stays stable.
var columnKeys = buildColumnKeys()

func buildColumnKeys() []columnKey {
	keys := make([]columnKey, 0, int(numColumns)+len(columnSynonyms))
	pos := make(map[string]int)

	add := func(raw string, col Column) {
		k := NormalizeForCompare(raw)
		if k == "" {
			return
		}
		if i, ok := pos[k]; ok {
			keys[i].col = col
			return
		}
		pos[k] = len(keys)
		keys = append(keys, columnKey{key: k, col: col})
	}

	for _, c := range Columns() {
		add(c.String(), c)
	}
	for _, s := range columnSynonyms {
		add(s.raw, s.col)
	}
	return keys
}

// CanonicalColumn maps one raw header to a canonical column. An exact key
// match wins; otherwise the first key (in declaration order) that is a prefix
// of the header, or has the header as its prefix, is taken. Blank headers
// never match.
func CanonicalColumn(header string) (Column, bool) {
	key := NormalizeForCompare(header)
	if key == "" {
		return 0, false
	}
	for _, ck := range columnKeys {
		if ck.key == key {
			return ck.col, true
		}
	}
	for _, ck := range columnKeys {
		if strings.HasPrefix(key, ck.key) || strings.HasPrefix(ck.key, key) {
			return ck.col, true
		}
	}
	return 0, false
}

// MapColumns resolves every header of a sheet. The result has one entry per
// input position; unrecognized headers hold -1.
func MapColumns(headers []string) []Column {
	out := make([]Column, len(headers))
	for i, h := range headers {
		if col, ok := CanonicalColumn(h); ok {
			out[i] = col
		} else {
			out[i] = -1
		}
	}
	return out
}

// matchesCanonicalKey reports whether a normalized cell counts toward header
// detection: equal to, or prefix-related with, a canonical column name.
func matchesCanonicalKey(norm string) bool {
	if norm == "" {
		return false
	}
	for _, t := range canonicalNameKeys {
		if norm == t || strings.HasPrefix(norm, t) || strings.HasPrefix(t, norm) {
			return true
		}
	}
	return false
}

var canonicalNameKeys = func() []string {
	keys := make([]string, numColumns)
	for i, name := range columnNames {
		keys[i] = NormalizeForCompare(name)
	}
	return keys
}()
