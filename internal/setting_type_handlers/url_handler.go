package setting_type_handlers

import (
	"context"
	"net/url"
	"strings"
)

// URLSettingTypeHandler handles "url" type settings
type URLSettingTypeHandler struct{}

// GetType returns the type identifier
func (h *URLSettingTypeHandler) GetType() string {
	return "url"
}

// Sanitize accepts absolute http(s) URLs and returns them in normalized form
func (h *URLSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if paramBool(params, "required") {
			return nil, NewInvalidValueError("A URL is required.")
		}
		return "", nil
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil, NewInvalidValueError("Invalid URL.")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, NewInvalidValueError("URL must use http or https.")
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	return u.String(), nil
}

// DefaultValue returns an empty URL
func (h *URLSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return ""
}

// ValidateParams accepts any parameters
func (h *URLSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	return nil
}

// GetParamSpec returns the parameter specification for url type
func (h *URLSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return []SettingParamSpec{
		{Name: "required", Type: "bool", Description: "Reject empty values", Example: "true"},
	}
}
