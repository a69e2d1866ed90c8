package models_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mediafolder/models"
)

func strPtr(s string) *string { return &s }

func TestNewID(t *testing.T) {
	id := models.NewID()

	assert.Len(t, id, 32)
	assert.True(t, models.IsValidID(id))
	assert.NotEqual(t, id, models.NewID())
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"generated", models.NewID(), true},
		{"empty", "", false},
		{"dashed uuid", "2b1d9c6e-4d8a-4f55-9a0e-7f7c1b6a9d10", false},
		{"uppercase", strings.ToUpper(models.NewID()), false},
		{"too short", "abc123", false},
		{"non hex", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IsValidID(tt.id))
		})
	}
}

func TestFolder_InheritsConfiguration(t *testing.T) {
	assert.False(t, (&models.Folder{UseParentConfiguration: true}).InheritsConfiguration(),
		"root folder cannot inherit")
	assert.True(t, (&models.Folder{UseParentConfiguration: true, ParentID: strPtr("p")}).InheritsConfiguration())
	assert.False(t, (&models.Folder{ParentID: strPtr("p")}).InheritsConfiguration())
}

func TestDefaultFolderConfiguration(t *testing.T) {
	cfg := models.DefaultFolderConfiguration()

	assert.True(t, cfg.CreateThumbnails)
	assert.True(t, cfg.KeepAspectRatio)
	assert.Equal(t, 80, cfg.ThumbnailQuality)
	assert.Empty(t, cfg.ID)
}
