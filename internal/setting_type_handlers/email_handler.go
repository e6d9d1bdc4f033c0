package setting_type_handlers

import (
	"context"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// EmailSettingTypeHandler handles "email" type settings
type EmailSettingTypeHandler struct{}

// GetType returns the type identifier
func (h *EmailSettingTypeHandler) GetType() string {
	return "email"
}

// Sanitize trims the address and rejects malformed addresses
func (h *EmailSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if paramBool(params, "required") {
			return nil, NewInvalidValueError("An email address is required.")
		}
		return "", nil
	}
	if !emailRegex.MatchString(s) {
		return nil, NewInvalidValueError("Invalid email address.")
	}
	return s, nil
}

// DefaultValue returns an empty address
func (h *EmailSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return ""
}

// ValidateParams accepts any parameters
func (h *EmailSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	return nil
}

// GetParamSpec returns the parameter specification for email type
func (h *EmailSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return []SettingParamSpec{
		{Name: "required", Type: "bool", Description: "Reject empty values", Example: "true"},
	}
}
