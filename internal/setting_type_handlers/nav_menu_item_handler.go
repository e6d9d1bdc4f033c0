package setting_type_handlers

import (
	"context"
	"strings"
)

var navMenuItemTypes = map[string]bool{
	"custom":    true,
	"post_type": true,
	"taxonomy":  true,
}

// NavMenuItemSettingTypeHandler handles "nav_menu_item" settings such as
// nav_menu_item[12]. A false or empty value marks the item as deleted.
type NavMenuItemSettingTypeHandler struct{}

// GetType returns the type identifier
func (h *NavMenuItemSettingTypeHandler) GetType() string {
	return "nav_menu_item"
}

// Sanitize validates the menu item fields
func (h *NavMenuItemSettingTypeHandler) Sanitize(ctx context.Context, params map[string]interface{}, raw interface{}) (interface{}, error) {
	item, ok := raw.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	itemType, _ := item["type"].(string)
	if itemType == "" {
		itemType = "custom"
	}
	if !navMenuItemTypes[itemType] {
		return nil, NewInvalidValueError("Unknown menu item type %q.", itemType)
	}

	title, _ := item["title"].(string)
	out := map[string]interface{}{
		"type":  itemType,
		"title": strings.TrimSpace(title),
	}

	if itemType == "custom" {
		link, _ := item["url"].(string)
		sanitized, err := (&URLSettingTypeHandler{}).Sanitize(ctx, map[string]interface{}{"required": true}, link)
		if err != nil {
			return nil, err
		}
		out["url"] = sanitized
	} else {
		id, ok := toInt(item["object_id"])
		if !ok || id <= 0 {
			return nil, NewInvalidValueError("Menu item must reference an object.")
		}
		out["object_id"] = id
	}

	if pos, ok := toInt(item["position"]); ok {
		out["position"] = pos
	}
	return out, nil
}

// IsEmptyInstance reports whether the item was deleted in the editor
func (h *NavMenuItemSettingTypeHandler) IsEmptyInstance(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return !v
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// EmptyInstanceValue returns the deleted item marker
func (h *NavMenuItemSettingTypeHandler) EmptyInstanceValue() interface{} {
	return false
}

// DefaultValue returns the deleted item marker
func (h *NavMenuItemSettingTypeHandler) DefaultValue(params map[string]interface{}) interface{} {
	return false
}

// ValidateParams accepts any parameters
func (h *NavMenuItemSettingTypeHandler) ValidateParams(params map[string]interface{}) []ValidationError {
	return nil
}

// GetParamSpec returns the parameter specification for nav_menu_item type
func (h *NavMenuItemSettingTypeHandler) GetParamSpec() []SettingParamSpec {
	return nil
}
