package setting_type_handlers

import (
	"context"
	"strings"
)

// WidgetInstanceSettingTypeHandler handles "widget_instance" settings such as
// widget_text[2]. An instance is a JSON object of widget fields; an instance
// explicitly emptied by the editor (empty object or empty array) is valid and
// stands for a removed widget.
type WidgetInstanceSettingTypeHandler struct{}

// GetType returns the type identifier
func (h *WidgetInstanceSettingTypeHandler) GetType() string {
	return "widget_instance"
}

// Sanitize normalizes the widget title and rejects non-object instances.
// Fields listed in the allowed_fields parameter are kept; others are dropped.
func (h *WidgetInstanceSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	instance, ok := raw.(map[string]interface{})
	if !ok {
		return nil, NewInvalidValueError("Widget instance must be an object.")
	}

	allowed := allowedFields(params)
	out := make(map[string]interface{}, len(instance))
	for k, v := range instance {
		if allowed != nil && !allowed[k] {
			continue
		}
		out[k] = v
	}

	if title, exists := out["title"]; exists {
		s, ok := title.(string)
		if !ok {
			return nil, NewInvalidValueError("Widget title must be text.")
		}
		out["title"] = strings.TrimSpace(s)
	}
	return out, nil
}

// IsEmptyInstance reports whether raw is an explicitly emptied instance
func (h *WidgetInstanceSettingTypeHandler) IsEmptyInstance(raw interface{}) bool {
	switch v := raw.(type) {
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// EmptyInstanceValue returns the canonical empty instance
func (h *WidgetInstanceSettingTypeHandler) EmptyInstanceValue() interface{} {
	return map[string]interface{}{}
}

// DefaultValue returns the canonical empty instance
func (h *WidgetInstanceSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return h.EmptyInstanceValue()
}

// ValidateParams checks allowed_fields is a list of names
func (h *WidgetInstanceSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	v, exists := params["allowed_fields"]
	if !exists {
		return nil
	}
	if _, ok := v.([]interface{}); !ok {
		return []ValidationError{{Field: "allowed_fields", Message: "allowed_fields must be a list"}}
	}
	return nil
}

// GetParamSpec returns the parameter specification for widget_instance type
func (h *WidgetInstanceSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return []SettingParamSpec{
		{Name: "allowed_fields", Type: "json", Description: "Instance fields that are kept", Example: `["title","text"]`},
	}
}

func allowedFields(params map[string]interface{}) map[string]bool {
	list, ok := params["allowed_fields"].([]interface{})
	if !ok {
		return nil
	}
	allowed := make(map[string]bool, len(list))
	for _, f := range list {
		if s, ok := f.(string); ok {
			allowed[s] = true
		}
	}
	return allowed
}
