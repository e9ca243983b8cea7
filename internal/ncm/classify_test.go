package ncm

import "testing"

func TestDetectHeaderRow(t *testing.T) {
	tests := []struct {
		name    string
		grid    Grid
		maxScan int
		want    int
		ok      bool
	}{
		{
			name: "header after title rows",
			grid: Grid{
				{"ANEXO I - Produtos com alíquota reduzida"},
				{},
				{"ITEM", "ANEXO", "DESCRIÇÃO DO PRODUTO", "NCM"},
				{"1", "", "Arroz", "1006.30.11"},
			},
			maxScan: DefaultHeaderScanRows,
			want:    2,
			ok:      true,
		},
		{
			name: "first qualifying row wins",
			grid: Grid{
				{"ITEM", "NCM", "IBS", "CBS"},
				{"ITEM", "NCM", "DESCRIÇÃO TIPI", "DESCRIÇÃO COMPLETA"},
			},
			maxScan: DefaultHeaderScanRows,
			want:    0,
			ok:      true,
		},
		{
			name: "repeated cells count once",
			grid: Grid{
				{"NCM", "NCM", "NCM", "ncm"},
			},
			maxScan: DefaultHeaderScanRows,
			ok:      false,
		},
		{
			name: "blank cells do not score",
			grid: Grid{
				{"ITEM", "NCM", "DESCRIÇÃO DO PRODUTO", ""},
			},
			maxScan: DefaultHeaderScanRows,
			ok:      false,
		},
		{
			name: "header beyond scan window",
			grid: Grid{
				{"x"}, {"x"}, {"x"},
				{"ITEM", "ANEXO", "NCM", "IBS"},
			},
			maxScan: 3,
			ok:      false,
		},
		{
			name:    "empty grid",
			grid:    nil,
			maxScan: DefaultHeaderScanRows,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectHeaderRow(tt.grid, tt.maxScan)
			if ok != tt.ok {
				t.Fatalf("DetectHeaderRow() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("DetectHeaderRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassifySheet(t *testing.T) {
	tests := []struct {
		name      string
		wantMode  SheetMode
		wantLabel string
	}{
		{"TIPI", ModeIgnored, ""},
		{" tipi ", ModeIgnored, ""},
		{"ANEXO I", ModeAnnex, "Anexo I"},
		{"Anexo 12", ModeAnnex, "Anexo XII"},
		{"Tributados", ModeAnnex, TaxedLabel},
		{"Exceções", ModeExceptions, ExceptionsLabel},
		{"EXCECOES ANEXO IV", ModeExceptions, ExceptionsLabel},
		{"Produtos", ModeAnnex, UnresolvedAnnex},
	}

	for _, tt := range tests {
		got := ClassifySheet(tt.name)
		if got.Mode != tt.wantMode {
			t.Errorf("ClassifySheet(%q).Mode = %s, want %s", tt.name, got.Mode, tt.wantMode)
		}
		if got.Label != tt.wantLabel {
			t.Errorf("ClassifySheet(%q).Label = %q, want %q", tt.name, got.Label, tt.wantLabel)
		}
	}
}
