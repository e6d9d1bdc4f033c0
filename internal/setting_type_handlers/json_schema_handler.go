package setting_type_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JsonSchemaSettingTypeHandler handles "json-schema" type settings.
// The value is accepted when it validates against the schema parameter.
type JsonSchemaSettingTypeHandler struct {
	cache sync.Map
}

// NewJsonSchemaSettingTypeHandler creates a handler with an empty schema cache
func NewJsonSchemaSettingTypeHandler() *JsonSchemaSettingTypeHandler {
	return &JsonSchemaSettingTypeHandler{}
}

// GetType returns the type identifier
func (h *JsonSchemaSettingTypeHandler) GetType() string {
	return "json-schema"
}

// Sanitize validates raw against the configured schema and returns it unchanged
func (h *JsonSchemaSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	schema, err := h.schemaFor(params)
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(raw); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, &InvalidValueError{Message: leafMessage(ve), Err: err}
		}
		return nil, &InvalidValueError{Message: "Value does not match the expected format.", Err: err}
	}
	return raw, nil
}

// DefaultValue returns nil; json-schema settings should configure a default
func (h *JsonSchemaSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return nil
}

// ValidateParams validates that schema is present and compiles
func (h *JsonSchemaSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	if _, exists := params["schema"]; !exists {
		return []ValidationError{{
			Field:   "schema",
			Message: "schema is required for json-schema type",
		}}
	}
	if _, err := h.schemaFor(params); err != nil {
		return []ValidationError{{
			Field:   "schema",
			Message: fmt.Sprintf("schema must be a valid JSON schema: %v", err),
		}}
	}
	return nil
}

// GetParamSpec returns the parameter specification for json-schema type
func (h *JsonSchemaSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return []SettingParamSpec{
		{
			Name:        "schema",
			Required:    true,
			Type:        "json",
			Description: "JSON schema the value must satisfy (required)",
			Example:     `{"type":"object","properties":{"color":{"type":"string"}}}`,
		},
	}
}

func (h *JsonSchemaSettingTypeHandler) schemaFor(params map[string]interface{}) (*jsonschema.Schema, error) {
	var key string
	switch s := params["schema"].(type) {
	case string:
		key = s
	case nil:
		return nil, fmt.Errorf("schema parameter is missing")
	default:
		b, err := json.Marshal(normalizeYAML(s))
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema: %w", err)
		}
		key = string(b)
	}

	if cached, ok := h.cache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}

	compiled, err := jsonschema.CompileString("setting.schema.json", key)
	if err != nil {
		return nil, err
	}
	h.cache.Store(key, compiled)
	return compiled, nil
}

// leafMessage returns the message of the deepest first cause
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation != "" {
		return fmt.Sprintf("%s: %s", ve.InstanceLocation, ve.Message)
	}
	return ve.Message
}

// normalizeYAML converts map[interface{}]interface{} nodes, which some YAML
// decoders produce, into JSON encodable maps.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[k] = normalizeYAML(val)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	}
	return v
}
