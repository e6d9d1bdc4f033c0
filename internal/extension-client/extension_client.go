package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/hooks"
	"github.com/wso2/customize-validation-api/internal/models"
	"github.com/wso2/customize-validation-api/internal/utils"
)

// FilterName is the registration name of the extension filter
const FilterName = "service-extension"

// ExtensionClient handles communication with the external extension service
type ExtensionClient struct {
	httpClient *http.Client
	config     *config.ServiceExtensionConfig
	logger     *logrus.Logger
}

// EnrichRequest is the payload sent to the enrich_save_response endpoint
type EnrichRequest struct {
	ChangesetID string               `json:"changeset_id,omitempty"`
	Blocked     bool                 `json:"blocked"`
	DryRun      bool                 `json:"dry_run,omitempty"`
	Response    *models.SaveResponse `json:"response"`
}

// NewExtensionClient creates a new extension client instance
func NewExtensionClient(cfg *config.ServiceExtensionConfig, logger *logrus.Logger) *ExtensionClient {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &ExtensionClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
		logger: logger,
	}
}

// Register installs the extension filter so it runs after the built-in filters
func (c *ExtensionClient) Register(filters *hooks.Registry) string {
	return filters.Register(FilterName, c.EnrichSaveResponse, hooks.WithPriority(hooks.PriorityLate))
}

// EnrichSaveResponse posts the outgoing save response to the extension service and merges the
// top-level "fields" object of its reply into the response. Failures are logged and leave the
// response unchanged.
func (c *ExtensionClient) EnrichSaveResponse(ctx context.Context, resp *models.SaveResponse, sc *hooks.SaveContext) *models.SaveResponse {
	if c.config.BaseURL == "" {
		c.logger.Debug("Extension service not configured, skipping call")
		return resp
	}

	body, err := c.call(ctx, c.config.Endpoints.EnrichSaveResponse, &EnrichRequest{
		ChangesetID: sc.ChangesetID,
		Blocked:     sc.Blocked,
		DryRun:      sc.DryRun,
		Response:    resp,
	})
	if err != nil {
		c.logger.WithError(err).Warn("Extension service enrichment skipped")
		return resp
	}

	fields := gjson.GetBytes(body, "fields")
	if !fields.IsObject() {
		return resp
	}
	fields.ForEach(func(key, value gjson.Result) bool {
		resp.Set(key.String(), value.Value())
		return true
	})
	return resp
}

// call makes an HTTP POST request to the extension service endpoint and returns the raw body
func (c *ExtensionClient) call(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	url := c.config.GetExtensionURL(endpoint)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if correlationID := utils.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(utils.CorrelationIDHeader, correlationID)
	}

	c.logger.WithField("url", url).Debug("Calling extension service")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		return nil, fmt.Errorf("extension service call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"statusCode": resp.StatusCode,
		"duration":   duration,
		"url":        url,
	}).Debug("Extension service response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extension service returned status %d: %s", resp.StatusCode, string(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("extension service returned invalid JSON")
	}

	return body, nil
}
