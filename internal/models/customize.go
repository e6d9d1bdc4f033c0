package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// Response field names of the save protocol
const (
	FieldMessage                = "message"
	FieldChangesetID            = "changeset_id"
	FieldInvalidSettings        = "invalid_settings"
	FieldSanitizedSettingValues = "sanitized_setting_values"
)

// Changeset statuses
const (
	ChangesetStatusPublished = "PUBLISHED"
)

// SettingValue is a persisted, sanitized setting value
type SettingValue struct {
	SettingID   string `db:"SETTING_ID" json:"settingId"`
	Value       string `db:"SETTING_VALUE" json:"value"`
	ChangesetID string `db:"CHANGESET_ID" json:"changesetId"`
	UpdatedTime int64  `db:"UPDATED_TIME" json:"updatedTime"`
}

// DecodeValue decodes the stored JSON value
func (sv *SettingValue) DecodeValue() (interface{}, error) {
	v, err := decodeJSON([]byte(sv.Value))
	if err != nil {
		return nil, fmt.Errorf("failed to decode value of setting %s: %w", sv.SettingID, err)
	}
	return v, nil
}

// decodeJSON decodes data keeping numbers as json.Number so large integers survive
func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Changeset records one committed save batch
type Changeset struct {
	ChangesetID  string `db:"CHANGESET_ID" json:"changesetId"`
	Status       string `db:"STATUS" json:"status"`
	SettingCount int    `db:"SETTING_COUNT" json:"settingCount"`
	SavedTime    int64  `db:"SAVED_TIME" json:"savedTime"`
	SavedBy      string `db:"SAVED_BY" json:"savedBy"`
}

// ChangesetResponse is the API view of a changeset including its setting IDs
type ChangesetResponse struct {
	Changeset
	SettingIDs []string `json:"settingIds"`
}

// PendingValues maps setting IDs to raw (unsanitized) submitted values in submission order.
// A present key with a nil value is an explicit JSON null.
type PendingValues = ordered.Map[interface{}]

// ParsePendingValues reads the "customized" object from a save request body keeping key order.
// The object may also be sent JSON-encoded as a string, as browser editors commonly do.
func ParsePendingValues(body []byte) (*PendingValues, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}

	customized := gjson.GetBytes(body, "customized")
	if !customized.Exists() {
		return nil, fmt.Errorf("customized is required")
	}
	if customized.Type == gjson.String {
		if !gjson.Valid(customized.Str) {
			return nil, fmt.Errorf("customized is not valid JSON")
		}
		customized = gjson.Parse(customized.Str)
	}
	if !customized.IsObject() {
		return nil, fmt.Errorf("customized must be an object")
	}

	pending := ordered.NewMap[interface{}]()
	var decodeErr error
	customized.ForEach(func(key, value gjson.Result) bool {
		v, err := decodeJSON([]byte(value.Raw))
		if err != nil {
			decodeErr = fmt.Errorf("customized.%s is not valid JSON: %w", key.String(), err)
			return false
		}
		pending.Set(key.String(), v)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return pending, nil
}

// SaveRequest is the decoded save payload
type SaveRequest struct {
	Pending *PendingValues
	SavedBy string
}

// SaveResponse is the body returned for a save attempt, both on failure and success.
// Extension fields added through the response filter chain are emitted after the core fields.
type SaveResponse struct {
	Message                string
	ChangesetID            string
	InvalidSettings        *ordered.Map[string]
	SanitizedSettingValues *ordered.Map[interface{}]

	extra *ordered.Map[interface{}]
}

// Set adds or replaces an extension field. Core field names are ignored.
func (r *SaveResponse) Set(key string, value interface{}) {
	if isCoreField(key) {
		return
	}
	if r.extra == nil {
		r.extra = ordered.NewMap[interface{}]()
	}
	r.extra.Set(key, value)
}

// Get returns an extension field
func (r *SaveResponse) Get(key string) (interface{}, bool) {
	return r.extra.Get(key)
}

// ExtraKeys returns the extension field names in insertion order
func (r *SaveResponse) ExtraKeys() []string {
	return r.extra.Keys()
}

// MarshalJSON writes the core fields followed by extension fields
func (r *SaveResponse) MarshalJSON() ([]byte, error) {
	out := ordered.NewMap[interface{}]()
	out.Set(FieldMessage, r.Message)
	if r.ChangesetID != "" {
		out.Set(FieldChangesetID, r.ChangesetID)
	}
	if r.InvalidSettings != nil {
		out.Set(FieldInvalidSettings, r.InvalidSettings)
	}
	if r.SanitizedSettingValues.Len() > 0 {
		out.Set(FieldSanitizedSettingValues, r.SanitizedSettingValues)
	}
	r.extra.Each(func(k string, v interface{}) bool {
		out.Set(k, v)
		return true
	})
	return out.MarshalJSON()
}

func isCoreField(key string) bool {
	switch key {
	case FieldMessage, FieldChangesetID, FieldInvalidSettings, FieldSanitizedSettingValues:
		return true
	}
	return false
}

// ValidateResponse is returned by the dry-run validation endpoint when every setting is valid
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// SettingResponse describes a registered setting and its current value
type SettingResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Transport string                 `json:"transport,omitempty"`
	Value     interface{}            `json:"value"`
	Default   interface{}            `json:"default"`
	Params    map[string]interface{} `json:"params,omitempty"`
	Saved     bool                   `json:"saved"`
	UpdatedAt *int64                 `json:"updatedTime,omitempty"`
}

// SettingListResponse is the list of registered settings
type SettingListResponse struct {
	Settings         []SettingResponse `json:"settings"`
	Total            int               `json:"total"`
	PresentationMode string            `json:"presentation_mode"`
}
