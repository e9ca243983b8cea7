package ncm

import (
	"regexp"
	"strings"
	"unicode"
)

// legalTextRE spots legal citations that leak into the ITEM column of the
// exceptions sheet: "Art. 12", "Artigo 3", "§ 1º", "inciso", "alínea", "caput".
var legalTextRE = regexp.MustCompile(
	`(?i)^\s*(?:art(?:igo)?\.?|art[ºo°]?)[\s\-]*\d+|\s*§|\binciso\b|\bal[ií]nea\b|\bcap[uú]t\b`,
)

// longHeaderMinLen is the length from which a header cell is treated as a
// sheet-wide description rather than a column name.
const longHeaderMinLen = 40

// SheetInput is a header-aligned sheet body ready for normalization.
type SheetInput struct {
	Header []string
	Body   Grid
	Class  SheetClass
}

// NormalizeResult is the output of NormalizeSheet.
type NormalizeResult struct {
	Rows []Row

	// Unmapped lists canonical columns no source header resolved to.
	Unmapped []Column

	// DescriptionFromHeader is set when a long header was promoted to the
	// sheet-wide full description.
	DescriptionFromHeader string
}

// NormalizeSheet turns one sheet body into canonical rows: columns are
// canonicalized and coalesced, cells cleaned, merged cells reconstructed
// according to the sheet mode, empty rows dropped and the annex label
// attached.
func NormalizeSheet(in SheetInput) NormalizeResult {
	var res NormalizeResult
	if in.Class.Mode == ModeIgnored {
		return res
	}

	mapping := MapColumns(in.Header)
	sources := make([][]int, numColumns)
	for i, col := range mapping {
		if col.Valid() {
			sources[col] = append(sources[col], i)
		}
	}

	var constDescription string
	if len(sources[ColFullDescription]) == 0 && in.Class.Mode != ModeExceptions {
		constDescription = longestHeaderText(in.Header)
		res.DescriptionFromHeader = constDescription
	}

	for _, col := range Columns() {
		if col == ColAnnex {
			continue
		}
		if len(sources[col]) == 0 && !(col == ColFullDescription && constDescription != "") {
			res.Unmapped = append(res.Unmapped, col)
		}
	}

	rows := make([]Row, len(in.Body))
	for r := range in.Body {
		for _, col := range Columns() {
			v := coalesce(in.Body, r, sources[col])
			if col == ColFullDescription && IsBlank(v) && constDescription != "" {
				v = constDescription
			}
			rows[r][col] = NormalizeVisible(v)
		}
		rows[r][ColAnnex] = in.Class.Label
	}

	switch in.Class.Mode {
	case ModeExceptions:
		rows = fillExceptions(rows)
	default:
		rows = fillAnnex(rows)
	}

	res.Rows = dropEmptyRows(rows)
	return res
}

// coalesce returns the first non-blank value of row among the given
// positions, scanning left to right.
func coalesce(g Grid, row int, positions []int) string {
	for _, p := range positions {
		if v := g.Cell(row, p); !IsBlank(v) {
			return v
		}
	}
	return ""
}

// longestHeaderText picks the longest header of at least longHeaderMinLen
// characters that contains a letter.
func longestHeaderText(header []string) string {
	best := ""
	for _, h := range header {
		t := strings.TrimSpace(h)
		if len([]rune(t)) < longHeaderMinLen || !strings.ContainsFunc(t, unicode.IsLetter) {
			continue
		}
		if len([]rune(t)) > len([]rune(best)) {
			best = t
		}
	}
	return best
}

// fillAnnex reconstructs vertically merged cells of a tabular annex sheet.
// ITEM and product description fill forward; the full description fills
// forward then backward within each (annex, item) group.
func fillAnnex(rows []Row) []Row {
	fillForward(rows, ColItem, nil)
	fillForward(rows, ColProductDescription, nil)

	groups := make(map[[2]string][]int)
	var order [][2]string
	for i, r := range rows {
		k := [2]string{r[ColAnnex], r[ColItem]}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		idx := groups[k]
		var last string
		for _, i := range idx {
			if IsBlank(rows[i][ColFullDescription]) {
				rows[i][ColFullDescription] = last
			} else {
				last = rows[i][ColFullDescription]
			}
		}
		last = ""
		for j := len(idx) - 1; j >= 0; j-- {
			i := idx[j]
			if IsBlank(rows[i][ColFullDescription]) {
				rows[i][ColFullDescription] = last
			} else {
				last = rows[i][ColFullDescription]
			}
		}
	}
	return rows
}

// fillExceptions handles anchor-and-block layouts. Legal text misplaced in
// ITEM moves to the full description, anchor rows open blocks whose full and
// TIPI descriptions propagate downwards, and anchors carrying no item of
// their own are removed. ITEM and product description never propagate.
func fillExceptions(rows []Row) []Row {
	for i := range rows {
		item := rows[i][ColItem]
		if legalTextRE.MatchString(item) && IsBlank(rows[i][ColFullDescription]) {
			rows[i][ColFullDescription] = item
			rows[i][ColItem] = ""
		}
	}

	anchor := make([]bool, len(rows))
	block := make([]int, len(rows))
	id := 0
	for i, r := range rows {
		anchor[i] = !IsBlank(r[ColFullDescription]) && IsBlank(r[ColNCM])
		if anchor[i] {
			id++
		}
		block[i] = id
	}

	fillForward(rows, ColFullDescription, block)
	fillForward(rows, ColTIPIDescription, block)
	fillForward(rows, ColTIPIDescription, nil)

	out := rows[:0]
	for i, r := range rows {
		if anchor[i] && IsBlank(r[ColItem]) && IsBlank(r[ColProductDescription]) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// fillForward replaces blank cells of col with the nearest preceding
// non-blank value. When block is non-nil the carried value resets whenever
// the block id changes.
func fillForward(rows []Row, col Column, block []int) {
	var last string
	for i := range rows {
		if block != nil && i > 0 && block[i] != block[i-1] {
			last = ""
		}
		if IsBlank(rows[i][col]) {
			rows[i][col] = last
		} else {
			last = rows[i][col]
		}
	}
}

// dropEmptyRows removes rows with no NCM, product description or full
// description.
func dropEmptyRows(rows []Row) []Row {
	out := rows[:0]
	for _, r := range rows {
		if IsBlank(r[ColNCM]) && IsBlank(r[ColProductDescription]) && IsBlank(r[ColFullDescription]) {
			continue
		}
		out = append(out, r)
	}
	return out
}
