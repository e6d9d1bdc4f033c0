package setting_type_handlers

import "context"

// BooleanSettingTypeHandler handles "boolean" type settings
type BooleanSettingTypeHandler struct{}

// GetType returns the type identifier
func (h *BooleanSettingTypeHandler) GetType() string {
	return "boolean"
}

// Sanitize accepts booleans, 0/1 and the usual truthy/falsy strings
func (h *BooleanSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	b, ok := toBool(raw)
	if !ok {
		return nil, nil
	}
	return b, nil
}

// DefaultValue returns false
func (h *BooleanSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return false
}

// ValidateParams accepts any parameters
func (h *BooleanSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	return nil
}

// GetParamSpec returns the parameter specification for boolean type
func (h *BooleanSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return nil
}
