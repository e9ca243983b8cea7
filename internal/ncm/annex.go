package ncm

import (
	"regexp"
	"strconv"
	"strings"
)

// UnresolvedAnnex is returned when no annex number can be derived.
const UnresolvedAnnex = "-"

var (
	anexoRomanRE      = regexp.MustCompile(`(?i)\banexo[\s:–—\-]*([IVXLCDM]+)\b`)
	anexoArabicRE     = regexp.MustCompile(`(?i)\banexo\S*?[\s:–—\-]*(\d{1,4})\b`)
	standaloneRomanRE = regexp.MustCompile(`(?i)\b([IVXLCDM]+)\b`)
)

// ExtractAnexoToken derives the annex numeral from a sheet name. Search
// order: "ANEXO <roman>", "ANEXO <number>" converted to roman, the last
// standalone roman token, otherwise UnresolvedAnnex.
func ExtractAnexoToken(sheetName string) string {
	name := strings.TrimSpace(sheetName)

	if m := anexoRomanRE.FindStringSubmatch(name); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := anexoArabicRE.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return ToRoman(n)
		}
	}
	if all := standaloneRomanRE.FindAllStringSubmatch(name, -1); len(all) > 0 {
		return strings.ToUpper(all[len(all)-1][1])
	}
	return UnresolvedAnnex
}

// ExtractAnexoLabel returns "Anexo <token>", or UnresolvedAnnex.
func ExtractAnexoLabel(sheetName string) string {
	token := ExtractAnexoToken(sheetName)
	if token == UnresolvedAnnex {
		return UnresolvedAnnex
	}
	return "Anexo " + token
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ToRoman converts 1..3999 to a roman numeral. Other values are returned in
// decimal.
func ToRoman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
