package setting_type_handlers

import (
	"fmt"
	"sort"
)

// SettingHandlerRegistry holds all registered type handlers
type SettingHandlerRegistry struct {
	handlers map[string]SettingTypeHandler
}

var (
	// defaultRegistry is the global registry singleton
	defaultRegistry *SettingHandlerRegistry
)

// init registers all built-in handlers at package init time
func init() {
	defaultRegistry = NewSettingHandlerRegistry()

	_ = defaultRegistry.Register(&StringSettingTypeHandler{})
	_ = defaultRegistry.Register(&EmailSettingTypeHandler{})
	_ = defaultRegistry.Register(&URLSettingTypeHandler{})
	_ = defaultRegistry.Register(&IntegerSettingTypeHandler{})
	_ = defaultRegistry.Register(&BooleanSettingTypeHandler{})
	_ = defaultRegistry.Register(NewJsonSchemaSettingTypeHandler())
	_ = defaultRegistry.Register(&WidgetInstanceSettingTypeHandler{})
	_ = defaultRegistry.Register(&NavMenuItemSettingTypeHandler{})
}

// NewSettingHandlerRegistry creates a new registry instance
func NewSettingHandlerRegistry() *SettingHandlerRegistry {
	return &SettingHandlerRegistry{
		handlers: make(map[string]SettingTypeHandler),
	}
}

// Register adds a handler to the registry
// Returns error if a handler for this type is already registered
func (r *SettingHandlerRegistry) Register(handler SettingTypeHandler) error {
	typeStr := handler.GetType()
	if _, exists := r.handlers[typeStr]; exists {
		return fmt.Errorf("handler for type %q already registered", typeStr)
	}
	r.handlers[typeStr] = handler
	return nil
}

// Get retrieves a handler by type string
// Returns error if no handler is registered for the type
func (r *SettingHandlerRegistry) Get(typeStr string) (SettingTypeHandler, error) {
	handler, exists := r.handlers[typeStr]
	if !exists {
		return nil, fmt.Errorf("no handler registered for setting type %q", typeStr)
	}
	return handler, nil
}

// GetAllTypes returns a sorted list of all registered setting types
func (r *SettingHandlerRegistry) GetAllTypes() []string {
	types := make([]string, 0, len(r.handlers))
	for typeStr := range r.handlers {
		types = append(types, typeStr)
	}
	sort.Strings(types)
	return types
}

// GetHandler retrieves a handler from the default registry by type
func GetHandler(typeStr string) (SettingTypeHandler, error) {
	return defaultRegistry.Get(typeStr)
}

// GetAllHandlerTypes returns list of all registered types in default registry
func GetAllHandlerTypes() []string {
	return defaultRegistry.GetAllTypes()
}

// GetDefaultRegistry returns the global registry singleton
func GetDefaultRegistry() *SettingHandlerRegistry {
	return defaultRegistry
}
