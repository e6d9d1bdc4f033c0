package customize

import (
	"strings"
	"sync"

	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// ValidationMessageStore holds the current validation message of one control.
// An empty message means the control is valid.
type ValidationMessageStore struct {
	control *Control
	mode    string
	message *Value[string]

	mu       sync.Mutex
	messages *ordered.Map[string]
}

// Ensure returns the control's store, creating it and binding its presenter on
// first use. Later calls return the same store without binding again.
func Ensure(c *Control) *ValidationMessageStore {
	c.mu.Lock()
	if c.validation != nil {
		store := c.validation
		c.mu.Unlock()
		return store
	}

	mode := PresentationSingle
	if c.editor != nil {
		mode = c.editor.presentationMode
	}
	store := &ValidationMessageStore{
		control:  c,
		mode:     mode,
		message:  NewValue(""),
		messages: newSettingMessages(c),
	}
	c.validation = store
	c.mu.Unlock()

	bindPresenter(c, store)
	return store
}

func newSettingMessages(c *Control) *ordered.Map[string] {
	messages := ordered.NewMap[string]()
	for _, s := range c.Settings {
		messages.Set(s.ID, "")
	}
	return messages
}

// Get returns the current message
func (s *ValidationMessageStore) Get() string {
	return s.message.Get()
}

// Set replaces the whole state with msg. Subscribers run synchronously even
// when msg equals the current message.
func (s *ValidationMessageStore) Set(msg string) {
	s.mu.Lock()
	s.messages = newSettingMessages(s.control)
	if msg != "" && len(s.control.Settings) > 0 {
		s.messages.Set(s.control.Settings[0].ID, msg)
	}
	s.mu.Unlock()
	s.message.Set(msg)
}

// SetSettingMessage records the message of one setting the control edits and
// publishes the control's combined message.
func (s *ValidationMessageStore) SetSettingMessage(settingID, msg string) {
	s.mu.Lock()
	s.messages.Set(settingID, msg)
	combined := strings.Join(nonEmpty(s.messages), "\n")
	s.mu.Unlock()
	s.message.Set(combined)
}

// Messages returns the non-empty per-setting messages in the control's setting order
func (s *ValidationMessageStore) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonEmpty(s.messages)
}

// Reset clears every message
func (s *ValidationMessageStore) Reset() {
	s.Set("")
}

// Bind subscribes to message changes
func (s *ValidationMessageStore) Bind(fn Observer[string]) *Subscription {
	return s.message.Bind(fn)
}

// Mode returns the presentation mode the store was created with
func (s *ValidationMessageStore) Mode() string {
	return s.mode
}

func nonEmpty(m *ordered.Map[string]) []string {
	var out []string
	m.Each(func(_ string, msg string) bool {
		if msg != "" {
			out = append(out, msg)
		}
		return true
	})
	return out
}
