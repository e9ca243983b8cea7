package ncm

import "strings"

// DefaultHeaderScanRows is how many leading rows are searched for the header.
const DefaultHeaderScanRows = 10

// HeaderMatchThreshold is the number of distinct canonical-looking cells a
// row needs before it is accepted as the header.
const HeaderMatchThreshold = 4

// DetectHeaderRow returns the index of the first row within maxScan that
// looks like the header, or false when none qualifies.
func DetectHeaderRow(g Grid, maxScan int) (int, bool) {
	n := min(len(g), maxScan)
	for r := 0; r < n; r++ {
		if headerScore(g[r]) >= HeaderMatchThreshold {
			return r, true
		}
	}
	return 0, false
}

// headerScore counts distinct normalized cells that match a canonical name.
func headerScore(cells []string) int {
	seen := make(map[string]struct{}, len(cells))
	score := 0
	for _, cell := range cells {
		k := NormalizeForCompare(cell)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if matchesCanonicalKey(k) {
			score++
		}
	}
	return score
}

// SheetMode selects how a sheet is normalized.
type SheetMode int

const (
	// ModeAnnex sheets are tabular, one product per row with vertically
	// merged cells.
	ModeAnnex SheetMode = iota
	// ModeExceptions sheets are annotation blocks opened by anchor rows.
	ModeExceptions
	// ModeIgnored sheets never enter the table.
	ModeIgnored
)

func (m SheetMode) String() string {
	switch m {
	case ModeAnnex:
		return "annex"
	case ModeExceptions:
		return "exceptions"
	case ModeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Fixed labels and names from the workbook's conventions.
const (
	ignoredSheetName = "TIPI"
	TaxedLabel       = "Tributado"
	ExceptionsLabel  = "Exceções"
)

// SheetClass is the classification decided once per sheet.
type SheetClass struct {
	Mode  SheetMode
	Label string
}

// ClassifySheet decides the handling mode and annex label of a sheet from its
// name. A name containing "TRIBUT" is labeled Tributado whatever its mode.
func ClassifySheet(name string) SheetClass {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, ignoredSheetName) {
		return SheetClass{Mode: ModeIgnored}
	}

	upper := strings.ToUpper(StripAccents(name))
	class := SheetClass{Mode: ModeAnnex}
	if strings.Contains(upper, "EXCE") {
		class.Mode = ModeExceptions
	}

	switch {
	case strings.Contains(upper, "TRIBUT"):
		class.Label = TaxedLabel
	case class.Mode == ModeExceptions:
		class.Label = ExceptionsLabel
	default:
		class.Label = ExtractAnexoLabel(name)
	}
	return class
}
