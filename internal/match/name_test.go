package match

import "testing"

func TestNameMatches(t *testing.T) {
	tests := []struct {
		name         string
		counterparty string
		tenantName   string
		want         bool
	}{
		{"exact", "Adam McCarthy", "Adam McCarthy", true},
		{"missing middle name", "Sanna Benemar", "Sanna Juni Benemar", true},
		{"case insensitive", "ADAM MCCARTHY", "Adam McCarthy", true},
		{"diacritics folded", "Benémar Sanna", "Sanna Juni Benemar", true},
		{"initial for first name", "S. Benemar", "Sanna Juni Benemar", true},
		{"initial for last name", "Adam M", "Adam McCarthy", true},
		{"different person", "Erik Lindqvist", "Adam McCarthy", false},
		{"shared first name only", "Adam Svensson", "Adam McCarthy", false},
		{"empty counterparty", "", "Adam McCarthy", false},
		{"empty tenant name", "Adam McCarthy", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NameMatches(tt.counterparty, tt.tenantName); got != tt.want {
				t.Errorf("NameMatches(%q, %q) = %v, want %v",
					tt.counterparty, tt.tenantName, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if s := similarity("sannabenemar", "sannabenemar"); s != 1.0 {
		t.Errorf("identical strings similarity = %v, want 1.0", s)
	}
	if s := similarity("sannabenemar", "sannajunibenemar"); s <= 0.7 {
		t.Errorf("middle-name variant similarity = %v, want > 0.7", s)
	}
	if s := similarity("adammccarthy", "eriklindqvist"); s > 0.5 {
		t.Errorf("unrelated names similarity = %v, want <= 0.5", s)
	}
}
