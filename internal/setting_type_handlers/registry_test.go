package setting_type_handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistry_HasBuiltInTypes(t *testing.T) {
	types := GetAllHandlerTypes()
	for _, typ := range []string{"string", "email", "url", "integer", "boolean", "json-schema", "widget_instance", "nav_menu_item"} {
		assert.Contains(t, types, typ)
	}
}

func TestRegistry_RegisterDuplicateFails(t *testing.T) {
	r := NewSettingHandlerRegistry()
	assert.NoError(t, r.Register(&StringSettingTypeHandler{}))
	err := r.Register(&StringSettingTypeHandler{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_GetUnknownType(t *testing.T) {
	_, err := GetHandler("color-picker")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestEmptyInstanceHandlers(t *testing.T) {
	var h SettingTypeHandler = &WidgetInstanceSettingTypeHandler{}
	eh, ok := h.(EmptyInstanceHandler)
	assert.True(t, ok)
	assert.True(t, eh.IsEmptyInstance([]interface{}{}))
	assert.True(t, eh.IsEmptyInstance(map[string]interface{}{}))
	assert.False(t, eh.IsEmptyInstance(map[string]interface{}{"title": "x"}))
	assert.Equal(t, map[string]interface{}{}, eh.EmptyInstanceValue())

	h = &NavMenuItemSettingTypeHandler{}
	eh, ok = h.(EmptyInstanceHandler)
	assert.True(t, ok)
	assert.True(t, eh.IsEmptyInstance(false))
	assert.False(t, eh.IsEmptyInstance(true))
	assert.Equal(t, false, eh.EmptyInstanceValue())

	_, ok = interface{}(&StringSettingTypeHandler{}).(EmptyInstanceHandler)
	assert.False(t, ok)
}
