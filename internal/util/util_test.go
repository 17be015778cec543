package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Pikachu", "pikachu"},
		{"spaces and punctuation", "Mr. Mime", "mrmime"},
		{"accents folded", "Flabébé", "flabebe"},
		{"forme dash", "Kommo-o-Totem", "kommoototem"},
		{"effect prefix", "move: Baton Pass", "movebatonpass"},
		{"digits kept", "Stockpile 2", "stockpile2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToID(tt.input))
		})
	}
}

func TestFirstUpper(t *testing.T) {
	assert.Equal(t, "The opposing Pikachu", FirstUpper("the opposing Pikachu"))
	assert.Equal(t, "Éclair", FirstUpper("éclair"))
	assert.Equal(t, "", FirstUpper(""))
}

func TestSubstringAfter(t *testing.T) {
	assert.Equal(t, "Stealth Rock", SubstringAfter("move: Stealth Rock", ": "))
	assert.Equal(t, "Reflect", SubstringAfter("Reflect", ": "))
}

func TestSignedString(t *testing.T) {
	assert.Equal(t, "+2", SignedString(2))
	assert.Equal(t, "-1", SignedString(-1))
	assert.Equal(t, "+0", SignedString(0))
	assert.Equal(t, "+12", SignedString(12))
}
