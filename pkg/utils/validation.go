package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var settingIDRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]+(\[[A-Za-z0-9_\-]+\])*$`)

// ValidateSettingID validates setting ID format, e.g. "blogname" or "widget_text[2]"
func ValidateSettingID(settingID string) error {
	if settingID == "" {
		return fmt.Errorf("setting ID cannot be empty")
	}
	if len(settingID) > 255 {
		return fmt.Errorf("setting ID too long (max 255 characters)")
	}
	if !settingIDRegex.MatchString(settingID) {
		return fmt.Errorf("invalid setting ID: %s", settingID)
	}
	return nil
}

// ValidateChangesetID validates changeset ID format
func ValidateChangesetID(changesetID string) error {
	if changesetID == "" {
		return fmt.Errorf("changeset ID cannot be empty")
	}
	if !IsValidChangesetID(changesetID) {
		return fmt.Errorf("invalid changeset ID: %s", changesetID)
	}
	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	// Trim whitespace
	input = strings.TrimSpace(input)
	return input
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // Default limit
	}
	if limit > 100 {
		return 100 // Max limit
	}
	return limit
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
