package service

import (
	"context"

	"github.com/wso2/customize-validation-api/internal/hooks"
	"github.com/wso2/customize-validation-api/internal/models"
	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// SavedValueReporterName is the registration name of the SavedValueReporter filter
const SavedValueReporterName = "saved-value-reporter"

// SavedValueReporter attaches the canonical value of every committed setting so the
// client can replace what it sent with what was stored. Blocked saves are left untouched.
func SavedValueReporter(ctx context.Context, resp *models.SaveResponse, sc *hooks.SaveContext) *models.SaveResponse {
	if sc.Blocked || len(sc.CommittedIDs) == 0 {
		return resp
	}

	values := ordered.NewMap[interface{}]()
	for _, id := range sc.CommittedIDs {
		if v, ok := sc.Sanitized.Get(id); ok {
			values.Set(id, v)
		}
	}
	resp.SanitizedSettingValues = values
	return resp
}

// RegisterDefaultFilters installs the filters every deployment runs
func RegisterDefaultFilters(filters *hooks.Registry) {
	filters.Register(SavedValueReporterName, SavedValueReporter, hooks.WithPriority(hooks.PriorityEarliest))
}
