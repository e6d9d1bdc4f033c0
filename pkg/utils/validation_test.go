package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSettingID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "plain", id: "blogname"},
		{name: "dashed", id: "site-icon"},
		{name: "indexed", id: "widget_text[2]"},
		{name: "nested", id: "nav_menu_item[12][title]"},
		{name: "empty", id: "", wantErr: true},
		{name: "space", id: "blog name", wantErr: true},
		{name: "unterminated", id: "widget_text[2", wantErr: true},
		{name: "too long", id: strings.Repeat("a", 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettingID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateChangesetID(t *testing.T) {
	assert.NoError(t, ValidateChangesetID(GenerateChangesetID()))
	assert.Error(t, ValidateChangesetID(""))
	assert.Error(t, ValidateChangesetID("CHANGESET-nope"))
	assert.Error(t, ValidateChangesetID(GenerateID()))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  he\x00llo \n"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(1000))
	assert.Equal(t, 5, ValidateLimit(5))
}
