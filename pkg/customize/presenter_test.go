package customize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddedControl(t *testing.T, editor *Editor, id, controlType, markup string) *Control {
	t.Helper()
	container, err := ParseFragment(markup)
	require.NoError(t, err)
	c, err := NewControl(id, controlType, []*Setting{NewSetting(id, nil)}, WithContainer(container))
	require.NoError(t, err)
	require.NoError(t, editor.AddControl(c))
	c.Embedded.Resolve()
	return c
}

func TestPresenter_Placement(t *testing.T) {
	editor := NewEditor(WithLogger(quietLogger()))

	tests := []struct {
		name        string
		controlType string
		markup      string
		parentClass string
		first       bool
	}{
		{
			name:        "after title",
			controlType: "text",
			markup:      `<li class="customize-control"><label><span class="customize-control-title">Site Title</span></label><input type="text"></li>`,
			parentClass: "",
		},
		{
			name:        "nav menu item settings",
			controlType: ControlTypeNavMenuItem,
			markup:      `<li class="customize-control customize-control-nav_menu_item"><div class="menu-item-bar"></div><div class="menu-item-settings"><p>fields</p></div></li>`,
			parentClass: ClassMenuItemSettings,
			first:       true,
		},
		{
			name:        "widget inside",
			controlType: ControlTypeWidgetForm,
			markup:      `<li class="customize-control customize-control-widget_form"><div class="widget"><div class="widget-inside"><form></form></div></div></li>`,
			parentClass: ClassWidgetInside,
			first:       true,
		},
		{
			name:        "append",
			controlType: "color",
			markup:      `<li class="customize-control"><input type="text"></li>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newEmbeddedControl(t, editor, "setting_"+tt.controlType, tt.controlType, tt.markup)
			Ensure(c).Set("Invalid value.")

			el := c.Presenter().Element()
			require.NotNil(t, el)
			assert.True(t, HasClass(el, "error"))
			live, _ := getAttr(el, "aria-live")
			assert.Equal(t, "assertive", live)

			switch {
			case tt.parentClass != "":
				assert.True(t, HasClass(el.Parent, tt.parentClass))
				assert.Equal(t, tt.first, el.Parent.FirstChild == el)
			case tt.name == "after title":
				assert.True(t, HasClass(el.PrevSibling, ClassControlTitle))
			default:
				assert.Same(t, c.Container, el.Parent)
				assert.Same(t, c.Container.LastChild, el)
			}
		})
	}
}

func TestPresenter_ReusesExistingMessageElement(t *testing.T) {
	editor := NewEditor(WithLogger(quietLogger()))
	c := newEmbeddedControl(t, editor, "blogname", "text",
		`<li class="customize-control"><div class="customize-setting-validation-message error"></div></li>`)

	Ensure(c).Set("Title required.")
	Ensure(c).Set("Too long")

	assert.Equal(t, 1, countByClass(c.Container, ClassValidationMessage))
	assert.Equal(t, "Too long", TextContent(c.Presenter().Element()))
}

func TestPresenter_TextIsNotMarkup(t *testing.T) {
	te := newTestEditor(t)
	Ensure(te.c2).Set(`<script>alert("x")</script>`)

	el := te.c2.Presenter().Element()
	require.NotNil(t, el.FirstChild)
	assert.Nil(t, el.FirstChild.NextSibling)
	assert.Equal(t, `<script>alert("x")</script>`, el.FirstChild.Data)
	assert.Contains(t, Render(el), "&lt;script&gt;")
}

func TestPresenter_WaitsForEmbedding(t *testing.T) {
	editor := NewEditor(WithLogger(quietLogger()))
	s := NewSetting("blogname", "")
	c, err := NewControl("blogname", "text", []*Setting{s})
	require.NoError(t, err)
	require.NoError(t, editor.AddControl(c))

	store := Ensure(c)
	store.Set("first")
	store.Set("second")

	assert.Nil(t, c.Presenter().Element())
	assert.Equal(t, 0, c.Presenter().Renders())
	assert.Equal(t, 2, c.Embedded.Pending())

	c.Embedded.Resolve()
	assert.Equal(t, 2, c.Presenter().Renders())
	assert.Equal(t, "second", TextContent(c.Presenter().Element()))

	store.Set("")
	assert.Equal(t, 3, c.Presenter().Renders())
	assert.False(t, HasClass(c.Container, ClassInvalid))
}

func TestPresenter_SetDuringEmbeddingFlushKeepsOrder(t *testing.T) {
	editor := NewEditor(WithLogger(quietLogger()))
	c, err := NewControl("blogname", "text", []*Setting{NewSetting("blogname", "")})
	require.NoError(t, err)
	require.NoError(t, editor.AddControl(c))

	store := Ensure(c)
	store.Set("a")
	c.Embedded.Done(func() { store.Set("x") })
	store.Set("b")

	c.Embedded.Resolve()

	assert.Equal(t, "x", store.Get())
	assert.Equal(t, "x", TextContent(c.Presenter().Element()))
	assert.Equal(t, 3, c.Presenter().Renders())
}

func TestPresenter_ListMode(t *testing.T) {
	editor := NewEditor(WithLogger(quietLogger()), WithPresentationMode(PresentationList))
	a := NewSetting("header[title]", "")
	b := NewSetting("header[color]", "")
	c, err := NewControl("header", "header", []*Setting{a, b})
	require.NoError(t, err)
	require.NoError(t, editor.AddControl(c))
	c.Embedded.Resolve()

	store := Ensure(c)
	store.SetSettingMessage(a.ID, "Title required.")
	store.SetSettingMessage(b.ID, "<b>bad</b> color")

	el := c.Presenter().Element()
	assert.Equal(t, `<div class="customize-setting-validation-message error" aria-live="assertive" data-transition="slideDown"><ul><li>Title required.</li><li>&lt;b&gt;bad&lt;/b&gt; color</li></ul></div>`, Render(el))
	assert.True(t, HasClass(c.Container, ClassInvalid))
}
