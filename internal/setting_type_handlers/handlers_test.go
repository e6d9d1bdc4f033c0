package setting_type_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringHandler_Sanitize(t *testing.T) {
	h := &StringSettingTypeHandler{}
	strict := WithValidation(context.Background())

	tests := []struct {
		name    string
		ctx     context.Context
		params  map[string]interface{}
		raw     interface{}
		want    interface{}
		wantMsg string
		reject  bool
	}{
		{name: "trims", ctx: strict, raw: "  My Site \x00", want: "My Site"},
		{name: "non string is bare rejection", ctx: strict, raw: 42, reject: true},
		{name: "required empty", ctx: strict, params: map[string]interface{}{"required": true, "required_message": "Title required."}, raw: "  ", wantMsg: "Title required."},
		{name: "too long strict", ctx: strict, params: map[string]interface{}{"max_length": 3}, raw: "abcd", wantMsg: "Too long (maximum 3 characters)."},
		{name: "too long lenient truncates", ctx: context.Background(), params: map[string]interface{}{"max_length": 3}, raw: "abcd", want: "abc"},
		{name: "pattern mismatch", ctx: strict, params: map[string]interface{}{"pattern": "^[a-z]+$"}, raw: "ABC", reject: true},
		{name: "pattern match", ctx: strict, params: map[string]interface{}{"pattern": "^[a-z]+$"}, raw: "abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Sanitize(tt.ctx, tt.params, tt.raw)
			switch {
			case tt.wantMsg != "":
				require.Error(t, err)
				var ive *InvalidValueError
				assert.True(t, errors.As(err, &ive))
				assert.Equal(t, tt.wantMsg, err.Error())
			case tt.reject:
				assert.NoError(t, err)
				assert.Nil(t, got)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStringHandler_ValidateParams(t *testing.T) {
	h := &StringSettingTypeHandler{}
	assert.Empty(t, h.ValidateParams(map[string]interface{}{"pattern": "^a$", "max_length": 10}))
	errs := h.ValidateParams(map[string]interface{}{"pattern": "(", "max_length": -1})
	assert.Len(t, errs, 2)
}

func TestEmailHandler_Sanitize(t *testing.T) {
	h := &EmailSettingTypeHandler{}
	ctx := WithValidation(context.Background())

	got, err := h.Sanitize(ctx, nil, " admin@example.com ")
	assert.NoError(t, err)
	assert.Equal(t, "admin@example.com", got)

	_, err = h.Sanitize(ctx, nil, "not-an-email")
	assert.EqualError(t, err, "Invalid email address.")

	got, err = h.Sanitize(ctx, nil, "")
	assert.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestURLHandler_Sanitize(t *testing.T) {
	h := &URLSettingTypeHandler{}
	ctx := WithValidation(context.Background())

	got, err := h.Sanitize(ctx, nil, "HTTPS://Example.COM/path")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/path", got)

	_, err = h.Sanitize(ctx, nil, "ftp://example.com")
	assert.EqualError(t, err, "URL must use http or https.")

	_, err = h.Sanitize(ctx, nil, "example")
	assert.EqualError(t, err, "Invalid URL.")
}

func TestIntegerHandler_Sanitize(t *testing.T) {
	h := &IntegerSettingTypeHandler{}
	params := map[string]interface{}{"min": 1, "max": 10}

	got, err := h.Sanitize(WithValidation(context.Background()), params, float64(5))
	assert.NoError(t, err)
	assert.Equal(t, int64(5), got)

	_, err = h.Sanitize(WithValidation(context.Background()), params, "11")
	assert.EqualError(t, err, "Value must be at most 10.")

	got, err = h.Sanitize(context.Background(), params, float64(0))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = h.Sanitize(context.Background(), params, 1.5)
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.Len(t, h.ValidateParams(map[string]interface{}{"min": 5, "max": 1}), 1)
}

func TestIntegerHandler_KeepsLargeJSONIntegers(t *testing.T) {
	h := &IntegerSettingTypeHandler{}
	ctx := WithValidation(context.Background())

	got, err := h.Sanitize(ctx, nil, json.Number("9007199254740993"))
	assert.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), got)

	got, err = h.Sanitize(ctx, nil, json.Number("7.0"))
	assert.NoError(t, err)
	assert.Equal(t, int64(7), got)

	got, err = h.Sanitize(ctx, nil, json.Number("7.5"))
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBooleanHandler_Sanitize(t *testing.T) {
	h := &BooleanSettingTypeHandler{}
	for raw, want := range map[interface{}]bool{true: true, "1": true, "off": false, float64(0): false, json.Number("1"): true} {
		got, err := h.Sanitize(context.Background(), nil, raw)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := h.Sanitize(context.Background(), nil, "maybe")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestJsonSchemaHandler_Sanitize(t *testing.T) {
	h := NewJsonSchemaSettingTypeHandler()
	params := map[string]interface{}{
		"schema": `{"type":"object","properties":{"color":{"type":"string","pattern":"^#[0-9a-f]{6}$"}},"required":["color"]}`,
	}
	assert.Empty(t, h.ValidateParams(params))

	raw := map[string]interface{}{"color": "#ff0000"}
	got, err := h.Sanitize(context.Background(), params, raw)
	assert.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = h.Sanitize(context.Background(), params, map[string]interface{}{"color": "red"})
	require.Error(t, err)
	var ive *InvalidValueError
	assert.True(t, errors.As(err, &ive))
	assert.Contains(t, err.Error(), "/color")
}

func TestJsonSchemaHandler_ValidateParams(t *testing.T) {
	h := NewJsonSchemaSettingTypeHandler()
	assert.Len(t, h.ValidateParams(map[string]interface{}{}), 1)
	assert.Len(t, h.ValidateParams(map[string]interface{}{"schema": `{"type": 12}`}), 1)
	assert.Empty(t, h.ValidateParams(map[string]interface{}{
		"schema": map[string]interface{}{"type": "string"},
	}))
}

func TestWidgetInstanceHandler_Sanitize(t *testing.T) {
	h := &WidgetInstanceSettingTypeHandler{}
	params := map[string]interface{}{"allowed_fields": []interface{}{"title", "text"}}

	got, err := h.Sanitize(context.Background(), params, map[string]interface{}{
		"title": "  Hello ",
		"text":  "body",
		"evil":  "<script>",
	})
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "Hello", "text": "body"}, got)

	_, err = h.Sanitize(context.Background(), nil, map[string]interface{}{"title": 3.0})
	assert.EqualError(t, err, "Widget title must be text.")

	_, err = h.Sanitize(context.Background(), nil, "string")
	assert.EqualError(t, err, "Widget instance must be an object.")
}

func TestNavMenuItemHandler_Sanitize(t *testing.T) {
	h := &NavMenuItemSettingTypeHandler{}
	ctx := WithValidation(context.Background())

	got, err := h.Sanitize(ctx, nil, map[string]interface{}{
		"title": " Home ",
		"type":  "custom",
		"url":   "https://example.com/",
	})
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"type": "custom", "title": "Home", "url": "https://example.com/"}, got)

	_, err = h.Sanitize(ctx, nil, map[string]interface{}{"type": "post_type"})
	assert.EqualError(t, err, "Menu item must reference an object.")

	_, err = h.Sanitize(ctx, nil, map[string]interface{}{"type": "archive"})
	assert.EqualError(t, err, `Unknown menu item type "archive".`)
}

func TestValidationContext(t *testing.T) {
	assert.False(t, IsValidating(context.Background()))
	assert.True(t, IsValidating(WithValidation(context.Background())))
}
