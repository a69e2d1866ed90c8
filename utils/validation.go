package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxFolderNameLength = 255

func ValidateFolderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("folder name cannot be empty")
	}

	if len(name) > MaxFolderNameLength {
		return fmt.Errorf("folder name too long (max %d characters)", MaxFolderNameLength)
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("folder name contains invalid UTF-8 characters")
	}

	invalidChars := []string{"<", ">", ":", "\"", "|", "?", "*", "\x00", "/", "\\"}
	for _, char := range invalidChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("folder name contains invalid character: %s", char)
		}
	}

	return nil
}

func ValidateThumbnailQuality(quality, max int) error {
	if quality < 0 || quality > max {
		return fmt.Errorf("thumbnail quality %d is outside 0-%d", quality, max)
	}
	return nil
}
