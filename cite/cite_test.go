package cite

import (
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// Extraction: individual pattern families
// ---------------------------------------------------------------------------

func TestExtractNeutralReference(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantText       string
		wantNormalized string
	}{
		{
			name:           "plain BGE",
			input:          "See BGE 144 III 93 for details.",
			wantText:       "BGE 144 III 93",
			wantNormalized: "BGE 144 III 93",
		},
		{
			name:           "french ATF",
			input:          "cf. ATF 141 IV 249",
			wantText:       "ATF 141 IV 249",
			wantNormalized: "ATF 141 IV 249",
		},
		{
			name:           "italian DTF",
			input:          "vedi DTF 139 II 404",
			wantText:       "DTF 139 II 404",
			wantNormalized: "DTF 139 II 404",
		},
		{
			name:           "paragraph suffix kept in text, dropped from normalized",
			input:          "BGE 144 III 93 E. 4.2 stellt klar",
			wantText:       "BGE 144 III 93 E. 4.2",
			wantNormalized: "BGE 144 III 93",
		},
		{
			name:           "consid suffix",
			input:          "ATF 141 IV 249 consid. 1.3",
			wantText:       "ATF 141 IV 249 consid. 1.3",
			wantNormalized: "ATF 141 IV 249",
		},
		{
			name:           "part with letter suffix",
			input:          "BGE 98 Ia 508",
			wantText:       "BGE 98 Ia 508",
			wantNormalized: "BGE 98 Ia 508",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := Extract(tt.input)
			if len(matches) != 1 {
				t.Fatalf("Extract(%q): got %d matches, want 1", tt.input, len(matches))
			}
			m := matches[0]
			if m.Kind != KindNeutral {
				t.Errorf("Kind = %q, want %q", m.Kind, KindNeutral)
			}
			if m.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", m.Text, tt.wantText)
			}
			if m.Normalized != tt.wantNormalized {
				t.Errorf("Normalized = %q, want %q", m.Normalized, tt.wantNormalized)
			}
			if got := tt.input[m.Start:m.End]; got != m.Text {
				t.Errorf("offsets select %q, want %q", got, m.Text)
			}
		})
	}
}

func TestExtractDocketNumber(t *testing.T) {
	matches := Extract("1C_123/2024 confirms earlier reasoning.")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Kind != KindDocket {
		t.Errorf("Kind = %q, want %q", m.Kind, KindDocket)
	}
	if m.Text != "1C_123/2024" {
		t.Errorf("Text = %q, want %q", m.Text, "1C_123/2024")
	}
	if m.Normalized != "1C_123/2024" {
		t.Errorf("Normalized = %q, want %q", m.Normalized, "1C_123/2024")
	}
	if m.Start != 0 || m.End != len("1C_123/2024") {
		t.Errorf("offsets = [%d,%d), want [0,%d)", m.Start, m.End, len("1C_123/2024"))
	}
}

func TestExtractDocketVariants(t *testing.T) {
	tests := []string{
		"5A_100/2021",
		"8C_1/2019",
		"2C_1045/2023",
		"12T_4/2007",
	}
	for _, input := range tests {
		matches := Extract("Urteil " + input + " vom 3. Mai")
		if len(matches) != 1 {
			t.Errorf("Extract with %q: got %d matches, want 1", input, len(matches))
			continue
		}
		if matches[0].Text != input {
			t.Errorf("Text = %q, want %q", matches[0].Text, input)
		}
	}
}

func TestExtractStatutoryArticle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
	}{
		{
			name:     "simple article",
			input:    "Haftung nach Art. 41 OR ist gegeben.",
			wantText: "Art. 41 OR",
		},
		{
			name:     "paragraph qualifier",
			input:    "gemäss Art. 8 Abs. 2 ZGB",
			wantText: "Art. 8 Abs. 2 ZGB",
		},
		{
			name:     "letter qualifier",
			input:    "Art. 336 Abs. 1 lit. a OR regelt",
			wantText: "Art. 336 Abs. 1 lit. a OR",
		},
		{
			name:     "french form",
			input:    "selon art. 97 al. 1 CO",
			wantText: "art. 97 al. 1 CO",
		},
		{
			name:     "article number with letter",
			input:    "Art. 271a OR",
			wantText: "Art. 271a OR",
		},
		{
			name:     "criminal code",
			input:    "Verletzung von Art. 117 StGB",
			wantText: "Art. 117 StGB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := Extract(tt.input)
			if len(matches) != 1 {
				t.Fatalf("Extract(%q): got %d matches, want 1", tt.input, len(matches))
			}
			m := matches[0]
			if m.Kind != KindArticle {
				t.Errorf("Kind = %q, want %q", m.Kind, KindArticle)
			}
			if m.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", m.Text, tt.wantText)
			}
			if m.Normalized != "" {
				t.Errorf("Normalized = %q, want empty for articles", m.Normalized)
			}
		})
	}
}

func TestExtractUnknownStatuteIgnored(t *testing.T) {
	// "XYZ" is not in the statute set, so no article match.
	if matches := Extract("Art. 41 XYZ"); len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

// ---------------------------------------------------------------------------
// Extraction: merged result properties
// ---------------------------------------------------------------------------

func TestExtractMixedFamilies(t *testing.T) {
	input := "See BGE 144 III 93 and also Art. 41 OR."
	matches := Extract(input)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Kind != KindNeutral || matches[0].Text != "BGE 144 III 93" {
		t.Errorf("matches[0] = %+v, want neutral BGE 144 III 93", matches[0])
	}
	if matches[0].Normalized != "BGE 144 III 93" {
		t.Errorf("matches[0].Normalized = %q, want %q", matches[0].Normalized, "BGE 144 III 93")
	}
	if matches[1].Kind != KindArticle || matches[1].Text != "Art. 41 OR" {
		t.Errorf("matches[1] = %+v, want article Art. 41 OR", matches[1])
	}
}

func TestExtractFirstMatchWinsOnOverlap(t *testing.T) {
	// The neutral candidate "BGE 144 II 1" starts at offset 0 and spans
	// into the docket candidate "1C_123/2024". The earlier-starting
	// neutral match survives, the overlapping docket is discarded.
	input := "BGE 144 II 1C_123/2024"
	matches := Extract(input)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if matches[0].Kind != KindNeutral {
		t.Errorf("surviving Kind = %q, want %q", matches[0].Kind, KindNeutral)
	}
	if matches[0].Start != 0 {
		t.Errorf("surviving Start = %d, want 0", matches[0].Start)
	}
}

func TestExtractSortedAndNonOverlapping(t *testing.T) {
	input := "Im Urteil 5A_100/2021 verweist das Gericht auf BGE 144 III 93 " +
		"sowie auf Art. 8 ZGB und ATF 141 IV 249 consid. 1.3; vgl. auch 1C_123/2024."
	matches := Extract(input)
	if len(matches) < 4 {
		t.Fatalf("got %d matches, want at least 4", len(matches))
	}
	for i := range matches {
		m := matches[i]
		if m.Start < 0 || m.End > len(input) || m.Start >= m.End {
			t.Errorf("match %d has invalid offsets [%d,%d)", i, m.Start, m.End)
		}
		if input[m.Start:m.End] != m.Text {
			t.Errorf("match %d offsets select %q, want %q", i, input[m.Start:m.End], m.Text)
		}
		if i > 0 && matches[i-1].End > m.Start {
			t.Errorf("matches %d and %d overlap: end %d > start %d",
				i-1, i, matches[i-1].End, m.Start)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	input := "BGE 144 III 93, Art. 41 OR, 1C_123/2024 und nochmals BGE 120 II 5."
	first := Extract(input)
	second := Extract(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs differ:\n first = %+v\nsecond = %+v", first, second)
	}
}

func TestExtractEmptyAndNoMatch(t *testing.T) {
	if matches := Extract(""); matches != nil {
		t.Errorf("Extract(\"\") = %v, want nil", matches)
	}
	if matches := Extract("plain prose without any references"); len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

// ---------------------------------------------------------------------------
// Normalizer
// ---------------------------------------------------------------------------

func TestToSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		match Match
		want  string
	}{
		{
			name:  "normalized preferred",
			match: Match{Text: "BGE 144 III 93 E. 4.2", Normalized: "BGE 144 III 93"},
			want:  "BGE 144 III 93",
		},
		{
			name:  "falls back to text",
			match: Match{Text: "Art. 41 OR", Kind: KindArticle},
			want:  "Art. 41 OR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToSearchQuery(tt.match); got != tt.want {
				t.Errorf("ToSearchQuery = %q, want %q", got, tt.want)
			}
		})
	}
}
