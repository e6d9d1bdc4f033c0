package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wso2/customize-validation-api/internal/database"
	"github.com/wso2/customize-validation-api/internal/models"
)

// MockSettingValueDAO is a mock implementation of SettingValueStore
type MockSettingValueDAO struct {
	mock.Mock
}

func (m *MockSettingValueDAO) GetByID(ctx context.Context, settingID string) (*models.SettingValue, error) {
	args := m.Called(ctx, settingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettingValue), args.Error(1)
}

func (m *MockSettingValueDAO) GetByIDs(ctx context.Context, settingIDs []string) (map[string]models.SettingValue, error) {
	args := m.Called(ctx, settingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.SettingValue), args.Error(1)
}

func (m *MockSettingValueDAO) GetByChangesetID(ctx context.Context, changesetID string) ([]string, error) {
	args := m.Called(ctx, changesetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSettingValueDAO) UpsertWithTx(ctx context.Context, tx *database.Transaction, values []models.SettingValue) error {
	args := m.Called(ctx, tx, values)
	return args.Error(0)
}
