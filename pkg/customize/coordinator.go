package customize

// Coordinator hooks validation into the editor's save lifecycle
type Coordinator struct {
	editor   *Editor
	selector *InvalidControlSelector
}

// Attach wires the coordinator into editor. Controls already registered get
// their store immediately; later ones on add.
func Attach(editor *Editor) *Coordinator {
	co := &Coordinator{
		editor:   editor,
		selector: NewInvalidControlSelector(editor),
	}

	editor.Controls.Each(func(_ string, c *Control) bool {
		Ensure(c)
		return true
	})
	editor.Controls.OnAdd(func(c *Control) {
		Ensure(c)
	})

	editor.Bind(EventSave, func(any) {
		co.ClearAll()
	})
	editor.Bind(EventError, func(payload any) {
		saveErr, ok := payload.(*SaveError)
		if !ok || saveErr.InvalidSettings.Len() == 0 {
			return
		}
		co.selector.Apply(saveErr.InvalidSettings)
	})
	editor.Bind(EventSaved, func(payload any) {
		resp, ok := payload.(*SaveResponse)
		if !ok {
			return
		}
		co.reconcile(resp)
	})
	return co
}

// Selector returns the coordinator's selector
func (co *Coordinator) Selector() *InvalidControlSelector {
	return co.selector
}

// ClearAll resets every existing store to empty
func (co *Coordinator) ClearAll() {
	co.editor.Controls.Each(func(_ string, c *Control) bool {
		if store := c.Validation(); store != nil {
			store.Reset()
		}
		return true
	})
}

func (co *Coordinator) reconcile(resp *SaveResponse) {
	resp.SanitizedSettingValues.Each(func(id string, value any) bool {
		if setting, ok := co.editor.Settings.Get(id); ok {
			setting.Reconcile(value)
		}
		return true
	})
}
