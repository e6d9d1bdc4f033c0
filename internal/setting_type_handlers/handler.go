package setting_type_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a single validation error for a handler parameter
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SettingParamSpec defines metadata about a parameter accepted by a setting type
type SettingParamSpec struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "int", "bool", "json"
	Description string `json:"description"`
	Example     string `json:"example"`
}

// SettingTypeHandler defines sanitization behavior for a specific setting type.
//
// Sanitize returns the canonical value for raw. A rejection is signalled either
// by returning (nil, nil), which callers normalize to a generic message, or by
// returning an error whose message is shown to the user.
type SettingTypeHandler interface {
	// GetType returns the type string this handler manages (e.g., "string", "widget_instance")
	GetType() string

	// Sanitize maps a raw submitted value to its canonical value or rejects it
	Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error)

	// DefaultValue returns the value used when nothing was saved yet
	DefaultValue(params map[string]interface{}) interface{}

	// ValidateParams checks the registration parameters of a setting of this type
	ValidateParams(params map[string]interface{}) []ValidationError

	// GetParamSpec returns the parameters understood by this handler
	GetParamSpec() []SettingParamSpec
}

// EmptyInstanceHandler is implemented by composite container types whose
// instances can be explicitly emptied. An emptied instance is valid and is
// replaced by the handler's canonical empty value instead of being sanitized.
type EmptyInstanceHandler interface {
	IsEmptyInstance(raw interface{}) bool
	EmptyInstanceValue() interface{}
}

// InvalidValueError is returned by sanitizers that reject a value with a message
type InvalidValueError struct {
	Message string
	Err     error
}

// NewInvalidValueError creates an InvalidValueError with the given message
func NewInvalidValueError(format string, args ...interface{}) *InvalidValueError {
	return &InvalidValueError{Message: fmt.Sprintf(format, args...)}
}

func (e *InvalidValueError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "invalid value"
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

type validatingKey struct{}

// WithValidation marks ctx as a strict validation pass.
// Sanitizers may reject values only when IsValidating reports true and should
// coerce values leniently otherwise.
func WithValidation(ctx context.Context) context.Context {
	return context.WithValue(ctx, validatingKey{}, true)
}

// IsValidating reports whether ctx belongs to a strict validation pass
func IsValidating(ctx context.Context) bool {
	v, _ := ctx.Value(validatingKey{}).(bool)
	return v
}

// Parameter helpers. Values come either from the YAML config (int, bool, string)
// or from JSON (json.Number, float64), so all are accepted.

func paramString(params map[string]interface{}, name string) (string, bool) {
	v, ok := params[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func paramInt(params map[string]interface{}, name string) (int64, bool) {
	v, ok := params[name]
	if !ok || v == nil {
		return 0, false
	}
	return toInt(v)
}

func paramBool(params map[string]interface{}, name string) bool {
	v, ok := params[name]
	if !ok || v == nil {
		return false
	}
	b, ok := toBool(v)
	return ok && b
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int:
		return b != 0, b == 0 || b == 1
	case float64:
		return b != 0, b == 0 || b == 1
	case json.Number:
		f, err := b.Float64()
		if err != nil {
			return false, false
		}
		return f != 0, f == 0 || f == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "on", "yes":
			return true, true
		case "0", "false", "off", "no", "":
			return false, true
		}
	}
	return false, false
}
