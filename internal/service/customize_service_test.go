package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wso2/customize-validation-api/internal/dao"
	"github.com/wso2/customize-validation-api/internal/database"
	"github.com/wso2/customize-validation-api/internal/hooks"
	"github.com/wso2/customize-validation-api/internal/models"
	"github.com/wso2/customize-validation-api/internal/settings"
)

func TestSave_BlockedWritesNothing(t *testing.T) {
	setup := NewTestSetup()

	result, err := setup.Service.Save(context.Background(), &models.SaveRequest{
		Pending: pending("blogname", "ok", "slug", "NOT-OK"),
	})
	require.NoError(t, err)
	require.True(t, result.Blocked)

	assert.Equal(t, "There is 1 invalid setting.", result.Response.Message)
	assert.Equal(t, []string{"slug"}, result.Response.InvalidSettings.Keys())
	msg, _ := result.Response.InvalidSettings.Get("slug")
	assert.Equal(t, "Invalid value.", msg)

	data, err := json.Marshal(result.Response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"There is 1 invalid setting.","invalid_settings":{"slug":"Invalid value."}}`, string(data))

	setup.MockTransactor.AssertNotCalled(t, "WithTransaction", mock.Anything)
	setup.MockValueDAO.AssertNotCalled(t, "UpsertWithTx", mock.Anything, mock.Anything, mock.Anything)
	setup.MockChangesetDAO.AssertNotCalled(t, "CreateWithTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestSave_BlockedCollectsEveryInvalidSetting(t *testing.T) {
	setup := NewTestSetup()

	result, err := setup.Service.Save(context.Background(), &models.SaveRequest{
		Pending: pending("posts_per_page", 500, "blogname", "far too long a title", "slug", "x1"),
	})
	require.NoError(t, err)
	require.True(t, result.Blocked)

	assert.Equal(t, "There are 3 invalid settings.", result.Response.Message)
	assert.Equal(t, []string{"posts_per_page", "blogname", "slug"}, result.Response.InvalidSettings.Keys())
	msg, _ := result.Response.InvalidSettings.Get("blogname")
	assert.Equal(t, "Too long (maximum 10 characters).", msg)
}

func TestSave_CommitsSanitizedValues(t *testing.T) {
	setup := NewTestSetup()

	setup.MockTransactor.On("WithTransaction", mock.Anything).Return(nil)
	setup.MockValueDAO.On("UpsertWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(rows []models.SettingValue) bool {
		if len(rows) != 2 {
			return false
		}
		return rows[0].SettingID == "blogname" && rows[0].Value == `"Trimmed"` &&
			rows[1].SettingID == "posts_per_page" && rows[0].ChangesetID == rows[1].ChangesetID
	})).Return(nil)
	setup.MockChangesetDAO.On("CreateWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(c *models.Changeset) bool {
		return c.SettingCount == 2 && c.Status == models.ChangesetStatusPublished && c.SavedBy == "admin"
	})).Return(nil)

	result, err := setup.Service.Save(context.Background(), &models.SaveRequest{
		Pending: pending("blogname", "  Trimmed  ", "unknown_setting", "x", "posts_per_page", 20),
		SavedBy: "admin",
	})
	require.NoError(t, err)
	require.False(t, result.Blocked)

	resp := result.Response
	assert.Equal(t, SavedMessage, resp.Message)
	assert.NotEmpty(t, resp.ChangesetID)
	assert.Nil(t, resp.InvalidSettings)
	assert.Equal(t, []string{"blogname", "posts_per_page"}, resp.SanitizedSettingValues.Keys())
	v, _ := resp.SanitizedSettingValues.Get("blogname")
	assert.Equal(t, "Trimmed", v)

	setup.MockValueDAO.AssertExpectations(t)
	setup.MockChangesetDAO.AssertExpectations(t)
}

func TestSave_EmptiedInstanceIsCommittedAsCanonicalValue(t *testing.T) {
	setup := NewTestSetup()

	setup.MockTransactor.On("WithTransaction", mock.Anything).Return(nil)
	setup.MockValueDAO.On("UpsertWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(rows []models.SettingValue) bool {
		return len(rows) == 1 && rows[0].SettingID == "widget_text[2]" && rows[0].Value == `{}`
	})).Return(nil)
	setup.MockChangesetDAO.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := setup.Service.Save(context.Background(), &models.SaveRequest{
		Pending: pending("widget_text[2]", []interface{}{}),
	})
	require.NoError(t, err)
	assert.False(t, result.Blocked)
	setup.MockValueDAO.AssertExpectations(t)
}

func TestSave_NothingToSave(t *testing.T) {
	setup := NewTestSetup()

	result, err := setup.Service.Save(context.Background(), &models.SaveRequest{
		Pending: pending("blogname", nil, "unknown", "x"),
	})
	require.NoError(t, err)
	assert.False(t, result.Blocked)
	assert.Equal(t, NothingToSave, result.Response.Message)
	assert.Empty(t, result.Response.ChangesetID)
	setup.MockTransactor.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestSave_PersistenceFailure(t *testing.T) {
	setup := NewTestSetup()

	setup.MockTransactor.On("WithTransaction", mock.Anything).Return(nil)
	setup.MockValueDAO.On("UpsertWithTx", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	result, err := setup.Service.Save(context.Background(), &models.SaveRequest{
		Pending: pending("blogname", "ok"),
	})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	setup.MockChangesetDAO.AssertNotCalled(t, "CreateWithTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestSave_RollsBackAllValuesWhenChangesetInsertFails(t *testing.T) {
	raw, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	setup := NewTestSetup()
	db := database.New(sqlx.NewDb(raw, "mysql"), setup.Logger)
	svc := NewCustomizeService(setup.Registry, dao.NewSettingValueDAO(db), dao.NewChangesetDAO(db), db, setup.Filters, setup.Logger)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO SETTING_VALUE").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec("INSERT INTO SETTING_VALUE").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec("INSERT INTO CUSTOMIZE_CHANGESET").WillReturnError(errors.New("constraint violation"))
	sqlMock.ExpectRollback()

	result, err := svc.Save(context.Background(), &models.SaveRequest{
		Pending: pending("blogname", "ok", "posts_per_page", 5),
	})
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSave_FiltersRunOnBlockedAndSuccess(t *testing.T) {
	setup := NewTestSetup()
	var seen []bool
	setup.Filters.Register("tagger", func(ctx context.Context, resp *models.SaveResponse, sc *hooks.SaveContext) *models.SaveResponse {
		seen = append(seen, sc.Blocked)
		resp.Set("tagger", true)
		return resp
	})

	setup.MockTransactor.On("WithTransaction", mock.Anything).Return(nil)
	setup.MockValueDAO.On("UpsertWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	setup.MockChangesetDAO.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	blocked, err := setup.Service.Save(context.Background(), &models.SaveRequest{Pending: pending("slug", "X")})
	require.NoError(t, err)
	saved, err := setup.Service.Save(context.Background(), &models.SaveRequest{Pending: pending("slug", "x")})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, seen)
	_, ok := blocked.Response.Get("tagger")
	assert.True(t, ok)
	_, ok = saved.Response.Get("tagger")
	assert.True(t, ok)
	assert.Nil(t, blocked.Response.SanitizedSettingValues)
}

func TestSave_RequiresPendingValues(t *testing.T) {
	setup := NewTestSetup()
	_, err := setup.Service.Save(context.Background(), &models.SaveRequest{})
	assert.ErrorIs(t, err, ErrInvalidSaveRequest)
}

func TestValidate_DryRun(t *testing.T) {
	setup := NewTestSetup()

	result, err := setup.Service.Validate(context.Background(), pending("blogname", "ok", "slug", "BAD"))
	require.NoError(t, err)
	assert.True(t, result.Blocked)
	assert.Equal(t, "There is 1 invalid setting.", result.Response.Message)
	assert.Equal(t, []string{"slug"}, result.Response.InvalidSettings.Keys())

	result, err = setup.Service.Validate(context.Background(), pending("blogname", "ok"))
	require.NoError(t, err)
	assert.False(t, result.Blocked)
	assert.Nil(t, result.Response)

	setup.MockTransactor.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestValidate_BlockedRunsFilterChain(t *testing.T) {
	setup := NewTestSetup()
	var seen []hooks.SaveContext
	setup.Filters.Register("audit", func(_ context.Context, resp *models.SaveResponse, sc *hooks.SaveContext) *models.SaveResponse {
		seen = append(seen, *sc)
		resp.Set("audit", "checked")
		return resp
	})

	validated, err := setup.Service.Validate(context.Background(), pending("slug", "BAD"))
	require.NoError(t, err)
	saved, err := setup.Service.Save(context.Background(), &models.SaveRequest{Pending: pending("slug", "BAD")})
	require.NoError(t, err)

	for _, result := range []*SaveResult{validated, saved} {
		require.True(t, result.Blocked)
		v, ok := result.Response.Get("audit")
		assert.True(t, ok)
		assert.Equal(t, "checked", v)
	}
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Blocked)
	assert.True(t, seen[0].DryRun)
	assert.True(t, seen[1].Blocked)
	assert.False(t, seen[1].DryRun)
}

func TestGetSetting(t *testing.T) {
	setup := NewTestSetup()

	setup.MockValueDAO.On("GetByID", mock.Anything, "blogname").
		Return(&models.SettingValue{SettingID: "blogname", Value: `"Saved"`, UpdatedTime: 7}, nil)
	setup.MockValueDAO.On("GetByID", mock.Anything, "slug").
		Return(nil, dao.ErrSettingValueNotFound)

	saved, err := setup.Service.GetSetting(context.Background(), "blogname")
	require.NoError(t, err)
	assert.Equal(t, "Saved", saved.Value)
	assert.True(t, saved.Saved)
	require.NotNil(t, saved.UpdatedAt)
	assert.Equal(t, int64(7), *saved.UpdatedAt)

	unsaved, err := setup.Service.GetSetting(context.Background(), "slug")
	require.NoError(t, err)
	assert.Equal(t, "", unsaved.Value)
	assert.False(t, unsaved.Saved)

	_, err = setup.Service.GetSetting(context.Background(), "nope")
	assert.ErrorIs(t, err, settings.ErrUnknownSetting)
}

func TestGetSettings(t *testing.T) {
	setup := NewTestSetup()

	setup.MockValueDAO.On("GetByIDs", mock.Anything, setup.Registry.IDs()).
		Return(map[string]models.SettingValue{
			"posts_per_page": {SettingID: "posts_per_page", Value: `25`, UpdatedTime: 1},
		}, nil)

	list, err := setup.Service.GetSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, list.Total)
	assert.Equal(t, "blogname", list.Settings[0].ID)
	assert.Equal(t, "My Site", list.Settings[0].Value)
	assert.Equal(t, json.Number("25"), list.Settings[2].Value)
	assert.True(t, list.Settings[2].Saved)
	assert.Equal(t, "single", list.PresentationMode)
}

func TestGetChangeset(t *testing.T) {
	setup := NewTestSetup()

	_, err := setup.Service.GetChangeset(context.Background(), "bogus")
	assert.ErrorIs(t, err, dao.ErrChangesetNotFound)

	id := "CHANGESET-3f1c7a56-8a0e-4f0c-9d55-2f5e4b0f7a11"
	setup.MockChangesetDAO.On("GetByID", mock.Anything, id).
		Return(&models.Changeset{ChangesetID: id, Status: models.ChangesetStatusPublished, SettingCount: 1}, nil)
	setup.MockValueDAO.On("GetByChangesetID", mock.Anything, id).Return([]string{"blogname"}, nil)

	resp, err := setup.Service.GetChangeset(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"blogname"}, resp.SettingIDs)
	assert.Equal(t, 1, resp.SettingCount)
}
