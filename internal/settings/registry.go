package settings

import (
	"fmt"

	"github.com/wso2/customize-validation-api/internal/config"
	handlers "github.com/wso2/customize-validation-api/internal/setting_type_handlers"
)

// Registry is an insertion-ordered collection of settings.
// It is built once at start-up and read concurrently afterwards.
type Registry struct {
	order []string
	byID  map[string]*Setting
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Setting)}
}

// NewRegistryFromConfig builds a registry from the configured setting definitions
func NewRegistryFromConfig(defs []config.SettingDefinition, handlerRegistry *handlers.SettingHandlerRegistry) (*Registry, error) {
	r := NewRegistry()
	for _, def := range defs {
		s, err := NewSetting(def.ID, def.Type, def.Default, def.Params, handlerRegistry)
		if err != nil {
			return nil, err
		}
		s.Transport = def.Transport
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a setting; IDs must be unique
func (r *Registry) Add(s *Setting) error {
	if _, exists := r.byID[s.ID]; exists {
		return fmt.Errorf("setting %q already registered", s.ID)
	}
	r.byID[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

// Get returns the setting with the given ID or nil
func (r *Registry) Get(id string) *Setting {
	return r.byID[id]
}

// Lookup returns the setting with the given ID or ErrUnknownSetting
func (r *Registry) Lookup(id string) (*Setting, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, id)
	}
	return s, nil
}

// Has reports whether id is registered
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns the registered IDs in registration order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// All returns the settings in registration order
func (r *Registry) All() []*Setting {
	all := make([]*Setting, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.byID[id])
	}
	return all
}

// Len returns the number of registered settings
func (r *Registry) Len() int {
	return len(r.order)
}
