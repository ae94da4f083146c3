package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_KnownValues(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"this is a test", "this is a test!", 97},
		{"fuzzy was a bear", "fuzzy fuzzy was a bear", 84},
		{"kitten", "sitting", 62},
		{"abcdefgh", "abijklmn", 25},
		// 12.5 rounds half to even.
		{"abcdefgh", "aijklmno", 12},
		{"same", "same", 100},
		{"", "x", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ratio(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSequenceRatio_AutojunkOnLongInput(t *testing.T) {
	a := []rune(strings.Repeat("a", 150) + strings.Repeat("b", 60))
	b := []rune(strings.Repeat("b", 60) + strings.Repeat("a", 150))

	// Both runes exceed 1% of b, so neither is indexed.
	assert.Equal(t, 0.0, sequenceRatio(a, b))
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"fuzzy was a bear", "fuzzy fuzzy was a bear", 100},
		{"new york mets vs atlanta braves", "atlanta braves vs new york mets", 100},
		{"London Heathrow Airport", "Heathrow", 100},
		{"London Heathrow Airport", "International Airport", 59},
		{"Goroka Airport", "International Airport", 67},
		{"apple", "apples", 91},
		{"Mississippi", "Missouri", 53},
		// Latin-1 letters are dropped before comparison.
		{"Cancún International Airport", "Cancun", 30},
		{"Paris", "London", 0},
		{"", "x", 0},
		{"!!!", "x", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TokenSetRatio(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestTokenSetRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"London Heathrow Airport", "International Airport"},
		{"Mississippi", "Missouri"},
		{"Chicago O'Hare International Airport", "O'Hare"},
	}
	for _, p := range pairs {
		assert.Equal(t, TokenSetRatio(p[0], p[1]), TokenSetRatio(p[1], p[0]))
	}
}

func TestProcessString(t *testing.T) {
	assert.Equal(t, "chicago o hare", processString("  Chicago O'Hare! "))
	assert.Equal(t, "snake_case", processString("snake_case"))
	assert.Equal(t, "cancn", processString("Cancún"))
}

func TestSubstringMatches_CaseSensitiveAndRepeated(t *testing.T) {
	assert.Equal(t, 1, substringMatches("London Heathrow Airport", "Heathrow"))
	assert.Equal(t, 0, substringMatches("London Heathrow Airport", "heathrow"))
	assert.Equal(t, 2, substringMatches("London Heathrow Airport", "Airport Airport"))
}
