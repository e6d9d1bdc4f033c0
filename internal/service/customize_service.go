package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/dao"
	"github.com/wso2/customize-validation-api/internal/database"
	"github.com/wso2/customize-validation-api/internal/gate"
	"github.com/wso2/customize-validation-api/internal/hooks"
	"github.com/wso2/customize-validation-api/internal/metrics"
	"github.com/wso2/customize-validation-api/internal/models"
	"github.com/wso2/customize-validation-api/internal/settings"
	"github.com/wso2/customize-validation-api/pkg/ordered"
	"github.com/wso2/customize-validation-api/pkg/utils"
)

// Messages returned by the save protocol
const (
	SavedMessage   = "Settings saved."
	NothingToSave  = "Nothing to save."
	AllValidReport = "All settings are valid."
)

// ErrInvalidSaveRequest is returned for a save request without pending values
var ErrInvalidSaveRequest = errors.New("invalid save request")

// SettingValueStore persists sanitized setting values
type SettingValueStore interface {
	GetByID(ctx context.Context, settingID string) (*models.SettingValue, error)
	GetByIDs(ctx context.Context, settingIDs []string) (map[string]models.SettingValue, error)
	GetByChangesetID(ctx context.Context, changesetID string) ([]string, error)
	UpsertWithTx(ctx context.Context, tx *database.Transaction, values []models.SettingValue) error
}

// ChangesetStore persists changeset records
type ChangesetStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, changeset *models.Changeset) error
	GetByID(ctx context.Context, changesetID string) (*models.Changeset, error)
	ListRecent(ctx context.Context, limit int) ([]models.Changeset, error)
}

// Transactor runs a function inside a database transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(*database.Transaction) error) error
}

// SaveResult is the outcome of a save request
type SaveResult struct {
	Blocked  bool
	Response *models.SaveResponse
}

// CustomizeService validates and commits customized setting values
type CustomizeService struct {
	registry            *settings.Registry
	values              SettingValueStore
	changesets          ChangesetStore
	db                  Transactor
	filters             *hooks.Registry
	metrics             *metrics.Metrics
	invalidValueMessage string
	presentationMode    string
	logger              *logrus.Logger
}

// ServiceOption configures a CustomizeService
type ServiceOption func(*CustomizeService)

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *CustomizeService) {
		s.metrics = m
	}
}

// WithInvalidValueMessage sets the message used for bare rejections
func WithInvalidValueMessage(msg string) ServiceOption {
	return func(s *CustomizeService) {
		s.invalidValueMessage = msg
	}
}

// WithPresentationMode sets the message presentation mode advertised to clients
func WithPresentationMode(mode string) ServiceOption {
	return func(s *CustomizeService) {
		s.presentationMode = mode
	}
}

// NewCustomizeService creates a new CustomizeService
func NewCustomizeService(
	registry *settings.Registry,
	values SettingValueStore,
	changesets ChangesetStore,
	db Transactor,
	filters *hooks.Registry,
	logger *logrus.Logger,
	opts ...ServiceOption,
) *CustomizeService {
	if filters == nil {
		filters = hooks.NewRegistry(logger)
	}
	s := &CustomizeService{
		registry:   registry,
		values:     values,
		changesets: changesets,
		db:         db,
		filters:    filters,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if !config.IsValidPresentationMode(s.presentationMode) {
		s.presentationMode = config.PresentationModeSingle
	}
	return s
}

// Registry returns the setting registry
func (s *CustomizeService) Registry() *settings.Registry {
	return s.registry
}

func (s *CustomizeService) newGate() *gate.Gate {
	return gate.New(s.registry,
		gate.WithLogger(s.logger),
		gate.WithMetrics(s.metrics),
		gate.WithInvalidValueMessage(s.invalidValueMessage),
	)
}

// Save validates every pending value and, only when all are valid, commits them in one transaction.
// A blocked save is not an error: the result carries the failure response and nothing is written.
func (s *CustomizeService) Save(ctx context.Context, req *models.SaveRequest) (*SaveResult, error) {
	if req == nil || req.Pending == nil {
		return nil, fmt.Errorf("%w: customized values are required", ErrInvalidSaveRequest)
	}

	result, err := s.newGate().Validate(ctx, req.Pending)
	if err != nil {
		return nil, fmt.Errorf("failed to validate settings: %w", err)
	}

	if result.Blocked() {
		return s.blocked(ctx, result, false), nil
	}

	if result.Sanitized.Len() == 0 {
		resp := s.filters.Apply(ctx, &models.SaveResponse{Message: NothingToSave}, &hooks.SaveContext{
			Sanitized: result.Sanitized,
		})
		return &SaveResult{Response: resp}, nil
	}

	changesetID, committed, err := s.commit(ctx, result.Sanitized, req.SavedBy)
	if err != nil {
		s.metrics.RecordSaveFailure()
		s.logger.WithError(err).Error("Failed to commit setting values")
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	s.metrics.RecordSaved(len(committed))

	s.logger.WithFields(logrus.Fields{
		"changeset_id":  changesetID,
		"setting_count": len(committed),
	}).Info("Settings saved successfully")

	resp := &models.SaveResponse{
		Message:     SavedMessage,
		ChangesetID: changesetID,
	}
	resp = s.filters.Apply(ctx, resp, &hooks.SaveContext{
		ChangesetID:  changesetID,
		CommittedIDs: committed,
		Sanitized:    result.Sanitized,
	})
	return &SaveResult{Response: resp}, nil
}

// commit writes every sanitized value and the changeset record atomically
// and returns the IDs that were written, in submission order.
func (s *CustomizeService) commit(ctx context.Context, sanitized *ordered.Map[interface{}], savedBy string) (string, []string, error) {
	changesetID := utils.GenerateChangesetID()
	now := utils.GetCurrentTimeMillis()

	rows := make([]models.SettingValue, 0, sanitized.Len())
	var encodeErr error
	sanitized.Each(func(id string, v interface{}) bool {
		data, err := json.Marshal(v)
		if err != nil {
			encodeErr = fmt.Errorf("failed to encode value of setting %s: %w", id, err)
			return false
		}
		rows = append(rows, models.SettingValue{
			SettingID:   id,
			Value:       string(data),
			ChangesetID: changesetID,
			UpdatedTime: now,
		})
		return true
	})
	if encodeErr != nil {
		return "", nil, encodeErr
	}

	changeset := &models.Changeset{
		ChangesetID:  changesetID,
		Status:       models.ChangesetStatusPublished,
		SettingCount: len(rows),
		SavedTime:    now,
		SavedBy:      savedBy,
	}

	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if err := s.values.UpsertWithTx(ctx, tx, rows); err != nil {
			return err
		}
		return s.changesets.CreateWithTx(ctx, tx, changeset)
	})
	if err != nil {
		return "", nil, err
	}

	return changesetID, sanitized.Keys(), nil
}

// blocked builds the failure response of a rejected batch and runs it through the filter chain
func (s *CustomizeService) blocked(ctx context.Context, result *gate.Result, dryRun bool) *SaveResult {
	resp := &models.SaveResponse{
		Message:         result.Summary(),
		InvalidSettings: result.InvalidSettings,
	}
	resp = s.filters.Apply(ctx, resp, &hooks.SaveContext{
		Blocked:         true,
		DryRun:          dryRun,
		Sanitized:       result.Sanitized,
		InvalidSettings: result.InvalidSettings,
	})
	return &SaveResult{Blocked: true, Response: resp}
}

// Validate runs the gate without persisting anything. A blocked batch gets the
// same filtered failure response a save would; a valid batch has no response.
func (s *CustomizeService) Validate(ctx context.Context, pending *models.PendingValues) (*SaveResult, error) {
	if pending == nil {
		return nil, fmt.Errorf("%w: customized values are required", ErrInvalidSaveRequest)
	}
	result, err := s.newGate().Validate(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to validate settings: %w", err)
	}
	if result.Blocked() {
		return s.blocked(ctx, result, true), nil
	}
	return &SaveResult{}, nil
}

// GetSettings lists every registered setting with its current value
func (s *CustomizeService) GetSettings(ctx context.Context) (*models.SettingListResponse, error) {
	saved, err := s.values.GetByIDs(ctx, s.registry.IDs())
	if err != nil {
		s.logger.WithError(err).Error("Failed to load setting values")
		return nil, fmt.Errorf("failed to load setting values: %w", err)
	}

	list := make([]models.SettingResponse, 0, s.registry.Len())
	for _, setting := range s.registry.All() {
		var stored *models.SettingValue
		if v, ok := saved[setting.ID]; ok {
			stored = &v
		}
		resp, err := s.buildSettingResponse(setting, stored)
		if err != nil {
			return nil, err
		}
		list = append(list, *resp)
	}

	return &models.SettingListResponse{
		Settings:         list,
		Total:            len(list),
		PresentationMode: s.presentationMode,
	}, nil
}

// GetSetting returns one registered setting with its current value
func (s *CustomizeService) GetSetting(ctx context.Context, settingID string) (*models.SettingResponse, error) {
	if err := utils.ValidateSettingID(settingID); err != nil {
		return nil, fmt.Errorf("%w: %s", settings.ErrUnknownSetting, err.Error())
	}
	setting, err := s.registry.Lookup(settingID)
	if err != nil {
		return nil, err
	}

	stored, err := s.values.GetByID(ctx, settingID)
	if err != nil {
		if !errors.Is(err, dao.ErrSettingValueNotFound) {
			s.logger.WithError(err).WithField("setting_id", settingID).Error("Failed to load setting value")
			return nil, fmt.Errorf("failed to load setting value: %w", err)
		}
		stored = nil
	}

	return s.buildSettingResponse(setting, stored)
}

// GetChangeset returns a committed changeset with the settings it last wrote
func (s *CustomizeService) GetChangeset(ctx context.Context, changesetID string) (*models.ChangesetResponse, error) {
	if err := utils.ValidateChangesetID(changesetID); err != nil {
		return nil, fmt.Errorf("%w: %s", dao.ErrChangesetNotFound, changesetID)
	}

	changeset, err := s.changesets.GetByID(ctx, changesetID)
	if err != nil {
		return nil, err
	}

	ids, err := s.values.GetByChangesetID(ctx, changesetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load changeset settings: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}

	return &models.ChangesetResponse{
		Changeset:  *changeset,
		SettingIDs: ids,
	}, nil
}

// ListChangesets returns the most recent changesets
func (s *CustomizeService) ListChangesets(ctx context.Context, limit int) ([]models.Changeset, error) {
	changesets, err := s.changesets.ListRecent(ctx, utils.ValidateLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list changesets: %w", err)
	}
	if changesets == nil {
		changesets = []models.Changeset{}
	}
	return changesets, nil
}

func (s *CustomizeService) buildSettingResponse(setting *settings.Setting, stored *models.SettingValue) (*models.SettingResponse, error) {
	resp := &models.SettingResponse{
		ID:        setting.ID,
		Type:      setting.Type,
		Transport: setting.Transport,
		Default:   setting.DefaultValue(),
		Params:    setting.Params,
		Value:     setting.DefaultValue(),
	}
	if stored == nil {
		return resp, nil
	}

	value, err := stored.DecodeValue()
	if err != nil {
		return nil, err
	}
	updated := stored.UpdatedTime
	resp.Value = value
	resp.Saved = true
	resp.UpdatedAt = &updated
	return resp, nil
}
