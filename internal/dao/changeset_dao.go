package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wso2/customize-validation-api/internal/database"
	"github.com/wso2/customize-validation-api/internal/models"
)

// ErrChangesetNotFound is returned when a changeset does not exist
var ErrChangesetNotFound = errors.New("changeset not found")

// ChangesetDAO handles database operations for committed changesets
type ChangesetDAO struct {
	db *database.DB
}

// NewChangesetDAO creates a new ChangesetDAO instance
func NewChangesetDAO(db *database.DB) *ChangesetDAO {
	return &ChangesetDAO{db: db}
}

// CreateWithTx inserts a changeset record using a transaction
func (dao *ChangesetDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, changeset *models.Changeset) error {
	query := `
		INSERT INTO CUSTOMIZE_CHANGESET (
			CHANGESET_ID, STATUS, SETTING_COUNT, SAVED_TIME, SAVED_BY
		) VALUES (?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		changeset.ChangesetID,
		changeset.Status,
		changeset.SettingCount,
		changeset.SavedTime,
		changeset.SavedBy,
	)

	if err != nil {
		return fmt.Errorf("failed to create changeset with transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a changeset by ID
func (dao *ChangesetDAO) GetByID(ctx context.Context, changesetID string) (*models.Changeset, error) {
	query := `
		SELECT CHANGESET_ID, STATUS, SETTING_COUNT, SAVED_TIME, SAVED_BY
		FROM CUSTOMIZE_CHANGESET
		WHERE CHANGESET_ID = ?
	`

	var changeset models.Changeset
	err := dao.db.GetContext(ctx, &changeset, query, changesetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrChangesetNotFound, changesetID)
		}
		return nil, fmt.Errorf("failed to get changeset: %w", err)
	}

	return &changeset, nil
}

// ListRecent retrieves the most recent changesets
func (dao *ChangesetDAO) ListRecent(ctx context.Context, limit int) ([]models.Changeset, error) {
	query := `
		SELECT CHANGESET_ID, STATUS, SETTING_COUNT, SAVED_TIME, SAVED_BY
		FROM CUSTOMIZE_CHANGESET
		ORDER BY SAVED_TIME DESC
		LIMIT ?
	`

	var changesets []models.Changeset
	if err := dao.db.SelectContext(ctx, &changesets, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list changesets: %w", err)
	}

	return changesets, nil
}
