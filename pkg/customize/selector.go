package customize

import (
	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// InvalidControlSelector routes server-reported messages to the controls that
// edit the invalid settings and focuses one of them.
type InvalidControlSelector struct {
	editor *Editor
	logger *logrus.Logger
}

// NewInvalidControlSelector creates a selector over the editor's registries
func NewInvalidControlSelector(editor *Editor) *InvalidControlSelector {
	return &InvalidControlSelector{editor: editor, logger: editor.logger}
}

// Apply sets the message of every control editing an invalid setting and
// focuses the first visible one, or the first one found when none is visible.
// It returns the focused control, nil when nothing resolved.
func (s *InvalidControlSelector) Apply(invalid *ordered.Map[string]) *Control {
	if invalid.Len() == 0 {
		return nil
	}

	var invalidControls []*Control
	invalid.Each(func(settingID, message string) bool {
		matched := false
		s.editor.Controls.Each(func(_ string, c *Control) bool {
			if !c.Edits(settingID) {
				return true
			}
			matched = true
			store := Ensure(c)
			if store.Mode() == PresentationList {
				store.SetSettingMessage(settingID, message)
			} else {
				store.Set(message)
			}
			invalidControls = append(invalidControls, c)
			return true
		})
		if !matched {
			s.logger.WithField("setting_id", settingID).Debug("No control edits invalid setting, dropping message")
		}
		return true
	})

	if len(invalidControls) == 0 {
		return nil
	}

	target := invalidControls[0]
	for _, c := range invalidControls {
		if s.isVisible(c) {
			target = c
			break
		}
	}
	target.Focus()
	return target
}

func (s *InvalidControlSelector) isVisible(c *Control) bool {
	if c.Section == "" {
		return false
	}
	section, ok := s.editor.Sections.Get(c.Section)
	if !ok || !section.Expanded.Get() {
		return false
	}
	if c.Expanded != nil && !c.Expanded.Get() {
		return false
	}
	return true
}
