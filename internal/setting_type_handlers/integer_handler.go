package setting_type_handlers

import (
	"context"
)

// IntegerSettingTypeHandler handles "integer" type settings
type IntegerSettingTypeHandler struct{}

// GetType returns the type identifier
func (h *IntegerSettingTypeHandler) GetType() string {
	return "integer"
}

// Sanitize converts numbers and numeric strings to an integer.
// Out of range values are rejected when validating and clamped otherwise.
func (h *IntegerSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	n, ok := toInt(raw)
	if !ok {
		return nil, nil
	}

	if lo, ok := paramInt(params, "min"); ok && n < lo {
		if IsValidating(ctx) {
			return nil, NewInvalidValueError("Value must be at least %d.", lo)
		}
		n = lo
	}
	if hi, ok := paramInt(params, "max"); ok && n > hi {
		if IsValidating(ctx) {
			return nil, NewInvalidValueError("Value must be at most %d.", hi)
		}
		n = hi
	}
	return n, nil
}

// DefaultValue returns zero
func (h *IntegerSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return int64(0)
}

// ValidateParams checks min does not exceed max
func (h *IntegerSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	lo, hasMin := paramInt(params, "min")
	hi, hasMax := paramInt(params, "max")
	if hasMin && hasMax && lo > hi {
		return []ValidationError{{Field: "min", Message: "min must not be greater than max"}}
	}
	return nil
}

// GetParamSpec returns the parameter specification for integer type
func (h *IntegerSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return []SettingParamSpec{
		{Name: "min", Type: "int", Description: "Smallest accepted value", Example: "0"},
		{Name: "max", Type: "int", Description: "Largest accepted value", Example: "100"},
	}
}
