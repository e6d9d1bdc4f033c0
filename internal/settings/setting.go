package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	handlers "github.com/wso2/customize-validation-api/internal/setting_type_handlers"
)

// ErrUnknownSetting is returned when a setting ID is not registered
var ErrUnknownSetting = errors.New("unknown setting")

// Setting is a registered unit of configuration with a sanitizer
type Setting struct {
	ID        string
	Type      string
	Default   interface{}
	Params    map[string]interface{}
	Transport string

	handler handlers.SettingTypeHandler
}

// NewSetting binds a setting definition to the handler of its type
func NewSetting(id, typ string, def interface{}, params map[string]interface{}, registry *handlers.SettingHandlerRegistry) (*Setting, error) {
	if registry == nil {
		registry = handlers.GetDefaultRegistry()
	}
	handler, err := registry.Get(typ)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", id, err)
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	if errs := handler.ValidateParams(params); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Field+": "+e.Message)
		}
		return nil, fmt.Errorf("setting %s has invalid params: %s", id, strings.Join(msgs, "; "))
	}
	return &Setting{
		ID:      id,
		Type:    typ,
		Default: def,
		Params:  params,
		handler: handler,
	}, nil
}

// Handler returns the type handler the setting is bound to
func (s *Setting) Handler() handlers.SettingTypeHandler {
	return s.handler
}

// Sanitize runs the setting's sanitizer on raw.
// (nil, nil) means the value was rejected without a message.
func (s *Setting) Sanitize(ctx context.Context, raw interface{}) (interface{}, error) {
	return s.handler.Sanitize(ctx, s.Params, raw)
}

// DefaultValue returns the configured default, falling back to the handler default
func (s *Setting) DefaultValue() interface{} {
	if s.Default != nil {
		return s.Default
	}
	return s.handler.DefaultValue(s.Params)
}

// EmptyInstance reports whether raw is an explicitly emptied composite instance
// and returns the canonical value to store for it.
func (s *Setting) EmptyInstance(raw interface{}) (interface{}, bool) {
	eh, ok := s.handler.(handlers.EmptyInstanceHandler)
	if !ok || !eh.IsEmptyInstance(raw) {
		return nil, false
	}
	return eh.EmptyInstanceValue(), true
}
