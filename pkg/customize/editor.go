package customize

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// Editor events
const (
	EventSave  = "save"
	EventError = "error"
	EventSaved = "saved"
)

// DefaultInvalidValueMessage is shown when a validator rejects a value without a reason
const DefaultInvalidValueMessage = "Invalid value."

// Presentation modes
const (
	PresentationSingle = "single"
	PresentationList   = "list"
)

// Editor is the host editor: registries of settings, sections and controls, an
// event bus and the save operation.
type Editor struct {
	Settings *Collection[*Setting]
	Sections *Collection[*Section]
	Controls *Collection[*Control]

	// Focused holds the control that last received focus
	Focused *Value[*Control]

	transport        SaveTransport
	logger           *logrus.Logger
	presentationMode string
	invalidValue     string
	focusHandler     func(*Control)

	mu     sync.RWMutex
	events map[string][]func(payload any)
}

// EditorOption configures an Editor
type EditorOption func(*Editor)

// WithTransport sets the transport used by Save
func WithTransport(t SaveTransport) EditorOption {
	return func(e *Editor) {
		e.transport = t
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithPresentationMode selects how validation messages are rendered
func WithPresentationMode(mode string) EditorOption {
	return func(e *Editor) {
		e.presentationMode = mode
	}
}

// WithInvalidValueMessage sets the message used when a validator rejects a value without a reason
func WithInvalidValueMessage(msg string) EditorOption {
	return func(e *Editor) {
		e.invalidValue = msg
	}
}

// WithFocusHandler sets a function called whenever a control is focused
func WithFocusHandler(fn func(*Control)) EditorOption {
	return func(e *Editor) {
		e.focusHandler = fn
	}
}

// NewEditor creates an empty editor
func NewEditor(opts ...EditorOption) *Editor {
	e := &Editor{
		Settings:         NewCollection[*Setting]("setting"),
		Sections:         NewCollection[*Section]("section"),
		Controls:         NewCollection[*Control]("control"),
		Focused:          NewValue[*Control](nil),
		presentationMode: PresentationSingle,
		invalidValue:     DefaultInvalidValueMessage,
		events:           make(map[string][]func(any)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logrus.StandardLogger()
	}
	if e.presentationMode != PresentationList {
		e.presentationMode = PresentationSingle
	}
	return e
}

// PresentationMode returns the configured presentation mode
func (e *Editor) PresentationMode() string {
	return e.presentationMode
}

// AddSetting registers a setting
func (e *Editor) AddSetting(s *Setting) error {
	if err := e.Settings.Add(s.ID, s); err != nil {
		return err
	}
	s.mu.Lock()
	s.editor = e
	s.mu.Unlock()
	return nil
}

// AddSection registers a section
func (e *Editor) AddSection(s *Section) error {
	return e.Sections.Add(s.ID, s)
}

// AddControl registers a control and fires the controls add callbacks
func (e *Editor) AddControl(c *Control) error {
	c.mu.Lock()
	c.editor = e
	c.mu.Unlock()
	return e.Controls.Add(c.ID, c)
}

// Bind registers fn for event
func (e *Editor) Bind(event string, fn func(payload any)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[event] = append(e.events[event], fn)
}

// Trigger calls every handler bound to event, in bind order
func (e *Editor) Trigger(event string, payload any) {
	e.mu.RLock()
	handlers := make([]func(any), len(e.events[event]))
	copy(handlers, e.events[event])
	e.mu.RUnlock()

	for _, fn := range handlers {
		fn(payload)
	}
}

// PendingValues returns the values of every dirty setting in registration order
func (e *Editor) PendingValues() *ordered.Map[any] {
	pending := ordered.NewMap[any]()
	e.Settings.Each(func(id string, s *Setting) bool {
		if s.Dirty() {
			pending.Set(id, s.Value.Get())
		}
		return true
	})
	return pending
}

// Save triggers "save", sends the pending values and triggers "saved" with the
// response or "error" with the failure.
func (e *Editor) Save(ctx context.Context) (*SaveResponse, error) {
	if e.transport == nil {
		return nil, fmt.Errorf("editor has no save transport")
	}

	e.Trigger(EventSave, nil)

	pending := e.PendingValues()
	resp, err := e.transport.Save(ctx, pending)
	if err != nil {
		var saveErr *SaveError
		if !errors.As(err, &saveErr) {
			saveErr = &SaveError{Message: err.Error(), Err: err}
		}
		e.logger.WithFields(logrus.Fields{
			"status":        saveErr.StatusCode,
			"invalid_count": saveErr.InvalidSettings.Len(),
		}).Debug("Save failed")
		e.Trigger(EventError, saveErr)
		return nil, saveErr
	}

	pending.Each(func(id string, _ any) bool {
		if s, ok := e.Settings.Get(id); ok {
			s.markClean()
		}
		return true
	})
	e.Trigger(EventSaved, resp)
	return resp, nil
}

func (e *Editor) invalidValueMessage() string {
	if e == nil {
		return DefaultInvalidValueMessage
	}
	return e.invalidValue
}

// settingMessage attaches msg to every control editing the setting
func (e *Editor) settingMessage(settingID, msg string) {
	if e == nil {
		return
	}
	e.Controls.Each(func(_ string, c *Control) bool {
		if !c.Edits(settingID) {
			return true
		}
		store := Ensure(c)
		if store.Mode() == PresentationList {
			store.SetSettingMessage(settingID, msg)
		} else {
			store.Set(msg)
		}
		return true
	})
}

func (e *Editor) focus(c *Control) {
	e.Focused.Set(c)
	if e.focusHandler != nil {
		e.focusHandler(c)
	}
}
