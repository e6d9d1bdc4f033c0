package setting_type_handlers

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// StringSettingTypeHandler handles "string" type settings
type StringSettingTypeHandler struct{}

// GetType returns the type identifier
func (h *StringSettingTypeHandler) GetType() string {
	return "string"
}

// Sanitize trims the value and strips NUL bytes.
// When validating, a missing required value, a value over max_length or a value
// not matching pattern is rejected. Outside validation an overlong value is truncated.
func (h *StringSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))

	if s == "" && paramBool(params, "required") {
		if msg, ok := paramString(params, "required_message"); ok && msg != "" {
			return nil, NewInvalidValueError("%s", msg)
		}
		return nil, NewInvalidValueError("A value is required.")
	}

	if limit, ok := paramInt(params, "max_length"); ok && limit > 0 && int64(utf8.RuneCountInString(s)) > limit {
		if IsValidating(ctx) {
			return nil, NewInvalidValueError("Too long (maximum %d characters).", limit)
		}
		s = string([]rune(s)[:limit])
	}

	if pattern, ok := paramString(params, "pattern"); ok && pattern != "" && s != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		if !re.MatchString(s) {
			return nil, nil
		}
	}

	return s, nil
}

// DefaultValue returns an empty string
func (h *StringSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return ""
}

// ValidateParams validates the pattern parameter compiles
func (h *StringSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	var errors []ValidationError
	if pattern, ok := paramString(params, "pattern"); ok && pattern != "" {
		if _, err := regexp.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   "pattern",
				Message: "pattern must be a valid regular expression",
			})
		}
	}
	if v, exists := params["max_length"]; exists {
		if n, ok := toInt(v); !ok || n < 0 {
			errors = append(errors, ValidationError{
				Field:   "max_length",
				Message: "max_length must be a non-negative integer",
			})
		}
	}
	return errors
}

// GetParamSpec returns the parameter specification for string type
func (h *StringSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return []SettingParamSpec{
		{Name: "required", Type: "bool", Description: "Reject empty values", Example: "true"},
		{Name: "required_message", Type: "string", Description: "Message shown for an empty required value", Example: "Title required."},
		{Name: "max_length", Type: "int", Description: "Maximum number of characters", Example: "60"},
		{Name: "pattern", Type: "string", Description: "Regular expression the value must match", Example: "^[a-z]+$"},
	}
}
