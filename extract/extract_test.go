package extract

import (
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses horizontal whitespace",
			input: "Das  Bundesgericht \t zieht",
			want:  "Das Bundesgericht zieht",
		},
		{
			name:  "windows line endings",
			input: "Zeile eins\r\nZeile zwei",
			want:  "Zeile eins\nZeile zwei",
		},
		{
			name:  "keeps paragraph breaks",
			input: "Absatz eins\n\nAbsatz zwei",
			want:  "Absatz eins\n\nAbsatz zwei",
		},
		{
			name:  "collapses blank line runs",
			input: "Absatz eins\n\n\n\n\nAbsatz zwei",
			want:  "Absatz eins\n\nAbsatz zwei",
		},
		{
			name:  "trims trailing space per line",
			input: "Zeile eins   \nZeile zwei",
			want:  "Zeile eins\nZeile zwei",
		},
		{
			name:  "trims outer whitespace",
			input: "\n\n  Urteil  \n\n",
			want:  "Urteil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashText(t *testing.T) {
	a := HashText("Urteil vom 15. März 2024")
	b := HashText("Urteil vom 15. März 2024")
	c := HashText("Urteil vom 16. März 2024")
	if a != b {
		t.Error("identical text must hash identically")
	}
	if a == c {
		t.Error("different text must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestGuessTitle(t *testing.T) {
	text := "X\nUrteil 1C_123/2024 vom 15. März 2024\nDas Bundesgericht zieht in Erwägung."
	got := GuessTitle(text)
	if got != "Urteil 1C_123/2024 vom 15. März 2024" {
		t.Errorf("GuessTitle = %q", got)
	}

	long := strings.Repeat("x", 300) + "\nKurzer Titel für den Entscheid"
	if got := GuessTitle(long); got != "Kurzer Titel für den Entscheid" {
		t.Errorf("GuessTitle skips overlong line, got %q", got)
	}

	if got := GuessTitle(""); got != "" {
		t.Errorf("GuessTitle on empty text = %q, want empty", got)
	}
}

func TestGuessDocket(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"federal style", "Urteil 1C_123/2024 vom 15. März 2024", "1C_123/2024"},
		{"federal single chamber", "Verfahren 5A_100/2021 betreffend", "5A_100/2021"},
		{"cantonal dotted", "Entscheid ST.2022.111 des Kantonsgerichts", "ST.2022.111"},
		{"cantonal dotted with suffix", "Entscheid KG.2021.5-SK3 vom", "KG.2021.5-SK3"},
		{"compact register", "Beschluss PS250322 vom", "PS250322"},
		{"first match wins", "Urteil 1C_123/2024 zitiert ST.2022.111", "1C_123/2024"},
		{"no docket", "Das Bundesgericht zieht in Erwägung.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessDocket(tt.input); got != tt.want {
				t.Errorf("GuessDocket(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGuessLanguage(t *testing.T) {
	de := "Das Bundesgericht zieht in Erwägung, dass die Beschwerde nicht begründet ist " +
		"und die Vorinstanz das Recht richtig angewendet hat, sowie dass eine Verletzung " +
		"der verfassungsmässigen Rechte nicht dargetan wird und die Kosten der Beschwerdeführerin " +
		"auferlegt werden, da die Begehren von Anfang an aussichtslos waren und nicht gehört werden."
	if got := GuessLanguage(de); got != "de" {
		t.Errorf("GuessLanguage(de sample) = %q, want de", got)
	}

	fr := "Le Tribunal fédéral considère que le recours est mal fondé dans la mesure où il est " +
		"recevable, que les frais sont mis à la charge du recourant selon la règle applicable, " +
		"et que la décision attaquée ne viole pas le droit fédéral dans les limites des griefs " +
		"soulevés pour l'essentiel de la cause."
	if got := GuessLanguage(fr); got != "fr" {
		t.Errorf("GuessLanguage(fr sample) = %q, want fr", got)
	}

	if got := GuessLanguage("short text"); got != "" {
		t.Errorf("GuessLanguage(short) = %q, want empty", got)
	}
}

func TestFromText(t *testing.T) {
	raw := "Urteil 1C_123/2024 vom 15. März 2024\n\n\n\nDas  Bundesgericht zieht in Erwägung."
	res := FromText(raw, 3)
	if res.Pages != 3 {
		t.Errorf("pages = %d, want 3", res.Pages)
	}
	if res.Docket != "1C_123/2024" {
		t.Errorf("docket = %q, want 1C_123/2024", res.Docket)
	}
	if res.Title != "Urteil 1C_123/2024 vom 15. März 2024" {
		t.Errorf("title = %q", res.Title)
	}
	if res.Hash == "" {
		t.Error("expected non-empty hash")
	}
	if strings.Contains(res.Text, "  ") {
		t.Errorf("text not normalized: %q", res.Text)
	}
	if strings.Contains(res.Text, "\n\n\n") {
		t.Errorf("blank runs not collapsed: %q", res.Text)
	}
}
