package ticker

import (
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name              string
		symbol            string
		excludeForeign    bool
		excludeADR        bool
		excludeDistressed bool
		want              bool
	}{
		{"simple symbol", "AAPL", true, true, true, true},
		{"single letter", "F", true, true, true, true},
		{"five letters", "GOOGL", true, true, true, true},
		{"class share suffix", "BRK.B", true, true, true, true},
		{"lowercase normalized", "ab.c", true, true, true, true},
		{"surrounding whitespace", "  MSFT ", true, true, true, true},
		{"too long", "TOOLONG", true, true, true, false},
		{"empty", "", true, true, true, false},
		{"digits", "AB1", true, true, true, false},
		{"multi letter suffix", "AB.CD", true, true, true, false},
		{"trailing dot", "AB.", true, true, true, false},
		{"leading dot", ".AB", true, true, true, false},
		{"foreign suffix excluded", "NSRG.F", true, false, false, false},
		{"foreign suffix allowed", "NSRG.F", false, false, false, true},
		{"adr suffix excluded", "TCEH.Y", false, true, false, false},
		{"adr suffix allowed", "TCEH.Y", false, false, false, true},
		{"distress suffix excluded", "LEHM.Q", false, false, true, false},
		{"distress suffix allowed", "LEHM.Q", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValid(tt.symbol, tt.excludeForeign, tt.excludeADR, tt.excludeDistressed)
			if got != tt.want {
				t.Errorf("IsValid(%q, %v, %v, %v) = %v, want %v",
					tt.symbol, tt.excludeForeign, tt.excludeADR, tt.excludeDistressed, got, tt.want)
			}
		})
	}
}

func TestIsProbablyOTC(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"SIXGF", true},  // 5 letters ending in F
		{"GRCYQ", true},  // ends in Q
		{"TCEHY", true},  // ends in Y
		{"ADDYZ", true},  // ends in Z
		{"sixgf", true},  // normalized before checking
		{"AAPL", false},  // 4 letters
		{"BRK.F", false}, // contains dot
		{"GOOGL", false}, // ends in L
		{"ABCDE", false}, // ends in E
		{"AB1DF", false}, // non-letter
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := IsProbablyOTC(tt.symbol); got != tt.want {
				t.Errorf("IsProbablyOTC(%q) = %v, want %v", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  brk.b "); got != "BRK.B" {
		t.Errorf("Normalize() = %q, want %q", got, "BRK.B")
	}
}
