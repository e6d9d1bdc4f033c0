package customize

import (
	"fmt"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Validator checks a value as it is edited. It returns the value to apply, an
// error whose text becomes the validation message, or a nil value and nil error
// to reject the value with the editor's generic invalid message.
type Validator func(value any) (any, error)

// Setting is the client-side copy of a registered setting
type Setting struct {
	ID    string
	Value *Value[any]

	mu        sync.Mutex
	dirty     bool
	validator Validator
	editor    *Editor
}

// SettingOption configures a Setting
type SettingOption func(*Setting)

// WithValidator checks every edit made through Set
func WithValidator(fn Validator) SettingOption {
	return func(s *Setting) {
		s.validator = fn
	}
}

// NewSetting creates a clean setting holding value
func NewSetting(id string, value any, opts ...SettingOption) *Setting {
	s := &Setting{ID: id, Value: NewValue(value)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set changes the value and marks the setting as pending save. With a
// validator, a rejected value is not applied and its message is attached to
// every control editing the setting; an accepted value clears that message.
func (s *Setting) Set(value any) {
	s.mu.Lock()
	validator, editor := s.validator, s.editor
	s.mu.Unlock()

	if validator != nil {
		validated, err := validator(value)
		switch {
		case err != nil:
			editor.settingMessage(s.ID, err.Error())
			return
		case validated == nil:
			editor.settingMessage(s.ID, editor.invalidValueMessage())
			return
		}
		editor.settingMessage(s.ID, "")
		value = validated
	}

	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
	s.Value.Set(value)
}

// Dirty reports whether the setting has changes not yet saved
func (s *Setting) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Reconcile replaces the value with the server's canonical value and marks the setting clean
func (s *Setting) Reconcile(value any) {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	s.Value.Set(value)
}

func (s *Setting) markClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Section is a collapsible group of controls
type Section struct {
	ID       string
	Expanded *Value[bool]
}

// NewSection creates a section
func NewSection(id string, expanded bool) *Section {
	return &Section{ID: id, Expanded: NewValue(expanded)}
}

// Control binds one or more settings to an editable UI element
type Control struct {
	ID       string
	Type     string
	Settings []*Setting
	Section  string

	// Expanded is the control's own expansion state; nil when the control has none
	Expanded *Value[bool]

	Container *html.Node
	Embedded  *Deferred

	mu         sync.Mutex
	editor     *Editor
	validation *ValidationMessageStore
	presenter  *Presenter
}

// ControlOption configures a Control
type ControlOption func(*Control)

// InSection places the control in a section
func InSection(sectionID string) ControlOption {
	return func(c *Control) {
		c.Section = sectionID
	}
}

// WithExpansion gives the control its own expansion state
func WithExpansion(expanded bool) ControlOption {
	return func(c *Control) {
		c.Expanded = NewValue(expanded)
	}
}

// WithContainer sets the control's container element
func WithContainer(container *html.Node) ControlOption {
	return func(c *Control) {
		c.Container = container
	}
}

// NewControl creates a control editing settings. Without a container option a
// bare list item carrying the control type class is created.
func NewControl(id, controlType string, settings []*Setting, opts ...ControlOption) (*Control, error) {
	if len(settings) == 0 {
		return nil, fmt.Errorf("control %q must edit at least one setting", id)
	}
	c := &Control{
		ID:       id,
		Type:     controlType,
		Settings: settings,
		Embedded: NewDeferred(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Container == nil {
		c.Container = NewElement(atom.Li, "customize-control", "customize-control-"+controlType)
		setAttr(c.Container, "id", "customize-control-"+id)
	}
	return c, nil
}

// Edits reports whether the control edits the setting
func (c *Control) Edits(settingID string) bool {
	for _, s := range c.Settings {
		if s.ID == settingID {
			return true
		}
	}
	return false
}

// Focus moves input focus to the control through its editor
func (c *Control) Focus() {
	c.mu.Lock()
	editor := c.editor
	c.mu.Unlock()
	if editor != nil {
		editor.focus(c)
	}
}

// Validation returns the control's message store, or nil before Ensure
func (c *Control) Validation() *ValidationMessageStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validation
}

// Presenter returns the control's presenter, or nil before Ensure
func (c *Control) Presenter() *Presenter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presenter
}

// IsType reports whether the control is of the given type, by declared type or container class
func (c *Control) IsType(controlType string) bool {
	return c.Type == controlType || HasClass(c.Container, "customize-control-"+controlType)
}
