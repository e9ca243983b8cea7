package ncm

import "testing"

func TestNormalizeVisible(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"nan", ""},
		{"NaN", ""},
		{" None ", ""},
		{"NaT", ""},
		{"<NA>", ""},
		{"<null>", ""},
		{"  Motor   a\tdiesel \n", "Motor a diesel"},
		{"Parafuso sextavado", "Parafuso sextavado"},
		{"nano", "nano"},
	}

	for _, tt := range tests {
		if got := NormalizeVisible(tt.in); got != tt.want {
			t.Errorf("NormalizeVisible(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeForCompare(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"nan", ""},
		{"NaN.", ""},
		{"Água", "agua"},
		{"AGUA", "agua"},
		{"Descrição do Produto", "descricao do produto"},
		{"DESCRIÇÃO_TIPI", "descricao tipi"},
		{"8407.10.00", "8407 10 00"},
		{"  CST  IBS, CBS ", "cst ibs cbs"},
		{"§ 1º", "1o"},
	}

	for _, tt := range tests {
		if got := NormalizeForCompare(tt.in); got != tt.want {
			t.Errorf("NormalizeForCompare(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeForCompare_Idempotent(t *testing.T) {
	inputs := []string{
		"Água Mineral",
		"8407.10.00",
		"NaN.",
		"<NA>",
		"Art. 5º, § 2º",
		"  ---  ",
		"Exceções ao Anexo XII",
	}

	for _, in := range inputs {
		once := NormalizeForCompare(in)
		twice := NormalizeForCompare(once)
		if once != twice {
			t.Errorf("NormalizeForCompare not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeForCompare_KeepAccents(t *testing.T) {
	if got := normalizeForCompare("Alíquota Zero", false); got != "alíquota zero" {
		t.Errorf("normalizeForCompare(keep accents) = %q, want %q", got, "alíquota zero")
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \t\n") {
		t.Error("IsBlank(whitespace) = false, want true")
	}
	if IsBlank(" x ") {
		t.Error("IsBlank(\" x \") = true, want false")
	}
}

func TestStripAccents(t *testing.T) {
	if got := StripAccents("Exceções à Tributação"); got != "Excecoes a Tributacao" {
		t.Errorf("StripAccents() = %q, want %q", got, "Excecoes a Tributacao")
	}
}
