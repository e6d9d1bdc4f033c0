package customize

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type testEditor struct {
	editor   *Editor
	c1, c2   *Control
	identity *Section
	title    *Section
	focused  []*Control
}

// newTestEditor builds an editor with two collapsed sections and two embedded controls:
// c1 edits site_icon in section "identity", c2 edits blogname in section "title".
func newTestEditor(t *testing.T, opts ...EditorOption) *testEditor {
	t.Helper()
	te := &testEditor{}
	opts = append([]EditorOption{
		WithLogger(quietLogger()),
		WithFocusHandler(func(c *Control) { te.focused = append(te.focused, c) }),
	}, opts...)
	te.editor = NewEditor(opts...)

	siteIcon := NewSetting("site_icon", float64(0))
	blogname := NewSetting("blogname", "My Site")
	require.NoError(t, te.editor.AddSetting(siteIcon))
	require.NoError(t, te.editor.AddSetting(blogname))

	te.identity = NewSection("identity", false)
	te.title = NewSection("title", false)
	require.NoError(t, te.editor.AddSection(te.identity))
	require.NoError(t, te.editor.AddSection(te.title))

	var err error
	te.c1, err = NewControl("site_icon", "media", []*Setting{siteIcon}, InSection("identity"))
	require.NoError(t, err)
	te.c2, err = NewControl("blogname", "text", []*Setting{blogname}, InSection("title"))
	require.NoError(t, err)
	require.NoError(t, te.editor.AddControl(te.c1))
	require.NoError(t, te.editor.AddControl(te.c2))

	te.c1.Embedded.Resolve()
	te.c2.Embedded.Resolve()
	return te
}
