package service

import (
	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/hooks"
	"github.com/wso2/customize-validation-api/internal/models"
	"github.com/wso2/customize-validation-api/internal/service/mocks"
	"github.com/wso2/customize-validation-api/internal/settings"
	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// TestSetup contains common test dependencies
type TestSetup struct {
	MockValueDAO     *mocks.MockSettingValueDAO
	MockChangesetDAO *mocks.MockChangesetDAO
	MockTransactor   *mocks.MockTransactor
	Registry         *settings.Registry
	Filters          *hooks.Registry
	Service          *CustomizeService
	Logger           *logrus.Logger
}

// testSettingDefinitions registers a small set of settings:
// blogname rejects values over 10 characters, slug rejects non-lowercase values without a message.
func testSettingDefinitions() []config.SettingDefinition {
	return []config.SettingDefinition{
		{ID: "blogname", Type: "string", Default: "My Site", Params: map[string]interface{}{"max_length": 10}},
		{ID: "slug", Type: "string", Params: map[string]interface{}{"pattern": "^[a-z]+$"}},
		{ID: "posts_per_page", Type: "integer", Default: 10, Params: map[string]interface{}{"min": 1, "max": 50}},
		{ID: "widget_text[2]", Type: "widget_instance"},
	}
}

// NewTestSetup creates a new test setup with mocks and the default filters
func NewTestSetup() *TestSetup {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	registry, err := settings.NewRegistryFromConfig(testSettingDefinitions(), nil)
	if err != nil {
		panic(err)
	}

	filters := hooks.NewRegistry(logger)
	RegisterDefaultFilters(filters)

	setup := &TestSetup{
		MockValueDAO:     &mocks.MockSettingValueDAO{},
		MockChangesetDAO: &mocks.MockChangesetDAO{},
		MockTransactor:   &mocks.MockTransactor{},
		Registry:         registry,
		Filters:          filters,
		Logger:           logger,
	}
	setup.Service = NewCustomizeService(registry, setup.MockValueDAO, setup.MockChangesetDAO, setup.MockTransactor, filters, logger)
	return setup
}

// pending builds pending values in the given key/value order
func pending(kv ...interface{}) *models.PendingValues {
	p := ordered.NewMap[interface{}]()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i].(string), kv[i+1])
	}
	return p
}
