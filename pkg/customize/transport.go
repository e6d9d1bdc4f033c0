package customize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// API paths of the customize service
const (
	SavePath     = "/api/v1/customize/save"
	ValidatePath = "/api/v1/customize/validate"
	SettingsPath = "/api/v1/customize/settings"
)

// SaveTransport sends pending values to the server
type SaveTransport interface {
	Save(ctx context.Context, pending *ordered.Map[any]) (*SaveResponse, error)
}

// SaveResponse is a successful save reply
type SaveResponse struct {
	Message                string
	ChangesetID            string
	SanitizedSettingValues *ordered.Map[any]
	// Fields holds any other top-level fields, in document order
	Fields *ordered.Map[any]
}

// SaveError is a rejected or failed save. InvalidSettings is empty for failures
// unrelated to setting validation.
type SaveError struct {
	StatusCode      int
	Message         string
	InvalidSettings *ordered.Map[string]
	Err             error
}

func (e *SaveError) Error() string {
	if e.InvalidSettings.Len() > 0 {
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.InvalidSettings.Keys(), ", "))
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("save failed with status %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// SettingInfo is one entry of the settings listing
type SettingInfo struct {
	ID      string
	Type    string
	Value   any
	Default any
	Saved   bool
}

// SettingList is the settings listing together with the server's presentation mode
type SettingList struct {
	Settings         []SettingInfo
	PresentationMode string
}

// HTTPTransport talks to the customize service over HTTP
type HTTPTransport struct {
	BaseURL  string
	Client   *http.Client
	Username string
	Password string

	logger *logrus.Logger
}

// NewHTTPTransport creates a transport for baseURL
func NewHTTPTransport(baseURL string, logger *logrus.Logger) *HTTPTransport {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Save posts the pending values. A rejected save returns a *SaveError carrying
// the invalid settings in the order the server reported them.
func (t *HTTPTransport) Save(ctx context.Context, pending *ordered.Map[any]) (*SaveResponse, error) {
	status, body, err := t.post(ctx, SavePath, pending)
	if err != nil {
		return nil, &SaveError{Message: err.Error(), Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, parseSaveError(status, body)
	}

	result := gjson.ParseBytes(body)
	resp := &SaveResponse{
		Message:                result.Get("message").String(),
		ChangesetID:            result.Get("changeset_id").String(),
		SanitizedSettingValues: ordered.NewMap[any](),
		Fields:                 ordered.NewMap[any](),
	}
	result.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "message", "changeset_id":
		case "sanitized_setting_values":
			value.ForEach(func(id, v gjson.Result) bool {
				resp.SanitizedSettingValues.Set(id.String(), v.Value())
				return true
			})
		default:
			resp.Fields.Set(key.String(), value.Value())
		}
		return true
	})
	return resp, nil
}

// Validate runs the server gate without saving. It returns the server's
// message when every setting is valid and a *SaveError otherwise.
func (t *HTTPTransport) Validate(ctx context.Context, pending *ordered.Map[any]) (string, error) {
	status, body, err := t.post(ctx, ValidatePath, pending)
	if err != nil {
		return "", &SaveError{Message: err.Error(), Err: err}
	}
	if status < 200 || status >= 300 {
		return "", parseSaveError(status, body)
	}
	return gjson.GetBytes(body, "message").String(), nil
}

// ListSettings returns the registered settings with their current values
func (t *HTTPTransport) ListSettings(ctx context.Context) (*SettingList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+SettingsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	status, body, err := t.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, parseSaveError(status, body)
	}

	list := &SettingList{PresentationMode: gjson.GetBytes(body, "presentation_mode").String()}
	gjson.GetBytes(body, "settings").ForEach(func(_, s gjson.Result) bool {
		list.Settings = append(list.Settings, SettingInfo{
			ID:      s.Get("id").String(),
			Type:    s.Get("type").String(),
			Value:   s.Get("value").Value(),
			Default: s.Get("default").Value(),
			Saved:   s.Get("saved").Bool(),
		})
		return true
	})
	return list, nil
}

func (t *HTTPTransport) post(ctx context.Context, path string, pending *ordered.Map[any]) (int, []byte, error) {
	if pending == nil {
		pending = ordered.NewMap[any]()
	}
	payload, err := json.Marshal(struct {
		Customized *ordered.Map[any] `json:"customized"`
	}{Customized: pending})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req)
}

func (t *HTTPTransport) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	if t.Username != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}

	startTime := time.Now()
	resp, err := t.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	t.logger.WithFields(logrus.Fields{
		"statusCode": resp.StatusCode,
		"duration":   time.Since(startTime),
		"path":       req.URL.Path,
	}).Debug("Customize service response received")

	if !gjson.ValidBytes(body) {
		return resp.StatusCode, nil, fmt.Errorf("invalid JSON response with status %d", resp.StatusCode)
	}
	return resp.StatusCode, body, nil
}

func parseSaveError(status int, body []byte) *SaveError {
	result := gjson.ParseBytes(body)
	saveErr := &SaveError{
		StatusCode:      status,
		Message:         result.Get("message").String(),
		InvalidSettings: ordered.NewMap[string](),
	}
	result.Get("invalid_settings").ForEach(func(id, msg gjson.Result) bool {
		saveErr.InvalidSettings.Set(id.String(), msg.String())
		return true
	})
	if saveErr.Message == "" {
		saveErr.Message = http.StatusText(status)
	}
	return saveErr
}
