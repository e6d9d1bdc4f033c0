package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wso2/customize-validation-api/internal/database"
	"github.com/wso2/customize-validation-api/internal/models"
)

// ErrSettingValueNotFound is returned when no value has been saved for a setting
var ErrSettingValueNotFound = errors.New("setting value not found")

const upsertSettingValueMySQL = `
	INSERT INTO SETTING_VALUE (SETTING_ID, SETTING_VALUE, CHANGESET_ID, UPDATED_TIME)
	VALUES (?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		SETTING_VALUE = VALUES(SETTING_VALUE),
		CHANGESET_ID = VALUES(CHANGESET_ID),
		UPDATED_TIME = VALUES(UPDATED_TIME)
`

const upsertSettingValueSQLite = `
	INSERT INTO SETTING_VALUE (SETTING_ID, SETTING_VALUE, CHANGESET_ID, UPDATED_TIME)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(SETTING_ID) DO UPDATE SET
		SETTING_VALUE = excluded.SETTING_VALUE,
		CHANGESET_ID = excluded.CHANGESET_ID,
		UPDATED_TIME = excluded.UPDATED_TIME
`

// SettingValueDAO handles database operations for saved setting values
type SettingValueDAO struct {
	db *database.DB
}

// NewSettingValueDAO creates a new SettingValueDAO instance
func NewSettingValueDAO(db *database.DB) *SettingValueDAO {
	return &SettingValueDAO{db: db}
}

// GetByID retrieves the saved value of a setting
func (dao *SettingValueDAO) GetByID(ctx context.Context, settingID string) (*models.SettingValue, error) {
	query := `
		SELECT SETTING_ID, SETTING_VALUE, CHANGESET_ID, UPDATED_TIME
		FROM SETTING_VALUE
		WHERE SETTING_ID = ?
	`

	var value models.SettingValue
	err := dao.db.GetContext(ctx, &value, query, settingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSettingValueNotFound, settingID)
		}
		return nil, fmt.Errorf("failed to get setting value: %w", err)
	}

	return &value, nil
}

// GetByIDs retrieves saved values for the given settings keyed by setting ID.
// Settings without a saved value are absent from the result.
func (dao *SettingValueDAO) GetByIDs(ctx context.Context, settingIDs []string) (map[string]models.SettingValue, error) {
	result := make(map[string]models.SettingValue, len(settingIDs))
	if len(settingIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT SETTING_ID, SETTING_VALUE, CHANGESET_ID, UPDATED_TIME
		FROM SETTING_VALUE
		WHERE SETTING_ID IN (?)
	`, settingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build setting value query: %w", err)
	}

	var values []models.SettingValue
	if err := dao.db.SelectContext(ctx, &values, dao.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get setting values: %w", err)
	}

	for _, v := range values {
		result[v.SettingID] = v
	}
	return result, nil
}

// GetByChangesetID retrieves the IDs of settings last written by a changeset
func (dao *SettingValueDAO) GetByChangesetID(ctx context.Context, changesetID string) ([]string, error) {
	query := `SELECT SETTING_ID FROM SETTING_VALUE WHERE CHANGESET_ID = ? ORDER BY SETTING_ID`

	var ids []string
	if err := dao.db.SelectContext(ctx, &ids, query, changesetID); err != nil {
		return nil, fmt.Errorf("failed to get setting values by changeset ID: %w", err)
	}

	return ids, nil
}

// UpsertWithTx inserts or replaces setting values using a transaction
func (dao *SettingValueDAO) UpsertWithTx(ctx context.Context, tx *database.Transaction, values []models.SettingValue) error {
	query := upsertSettingValueMySQL
	if tx.DriverName() == "sqlite3" {
		query = upsertSettingValueSQLite
	}

	for _, v := range values {
		_, err := tx.ExecContext(ctx, query, v.SettingID, v.Value, v.ChangesetID, v.UpdatedTime)
		if err != nil {
			return fmt.Errorf("failed to upsert setting value %s: %w", v.SettingID, err)
		}
	}

	return nil
}
