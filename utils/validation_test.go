package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "Holiday 2024", false},
		{"unicode", "Fotos Überblick", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"too long", strings.Repeat("x", MaxFolderNameLength+1), true},
		{"max length", strings.Repeat("x", MaxFolderNameLength), false},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFolderName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateThumbnailQuality(t *testing.T) {
	assert.NoError(t, ValidateThumbnailQuality(0, 100))
	assert.NoError(t, ValidateThumbnailQuality(100, 100))
	assert.Error(t, ValidateThumbnailQuality(-1, 100))
	assert.Error(t, ValidateThumbnailQuality(101, 100))
}
