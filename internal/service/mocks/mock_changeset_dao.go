package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wso2/customize-validation-api/internal/database"
	"github.com/wso2/customize-validation-api/internal/models"
)

// MockChangesetDAO is a mock implementation of ChangesetStore
type MockChangesetDAO struct {
	mock.Mock
}

func (m *MockChangesetDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, changeset *models.Changeset) error {
	args := m.Called(ctx, tx, changeset)
	return args.Error(0)
}

func (m *MockChangesetDAO) GetByID(ctx context.Context, changesetID string) (*models.Changeset, error) {
	args := m.Called(ctx, changesetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Changeset), args.Error(1)
}

func (m *MockChangesetDAO) ListRecent(ctx context.Context, limit int) ([]models.Changeset, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Changeset), args.Error(1)
}
