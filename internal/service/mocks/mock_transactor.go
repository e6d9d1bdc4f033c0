package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wso2/customize-validation-api/internal/database"
)

// MockTransactor runs the transaction body with a nil transaction unless the
// expectation returns an error, in which case the body is not run.
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithTransaction(ctx context.Context, fn func(*database.Transaction) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}
