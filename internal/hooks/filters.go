// Package hooks runs the save-response filter chain. Filters can decorate the
// response of every save attempt, blocked or committed, with extra top-level fields.
package hooks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"

	"github.com/wso2/customize-validation-api/internal/models"
	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// Priority orders filters. Lower runs first.
type Priority int

const (
	PriorityEarliest Priority = -1000
	PriorityEarly    Priority = -100
	PriorityNormal   Priority = 0
	PriorityLate     Priority = 100
	PriorityLatest   Priority = 1000
)

// SaveContext describes the save attempt a response belongs to
type SaveContext struct {
	Blocked bool
	// DryRun is set for validation requests that never persist
	DryRun      bool
	ChangesetID string
	// CommittedIDs are the setting IDs written by the persistence step, in submission order
	CommittedIDs []string
	// Sanitized holds the canonical value of every valid setting
	Sanitized       *ordered.Map[interface{}]
	InvalidSettings *ordered.Map[string]
}

// SaveResponseFilter decorates a save response. Returning nil keeps the input response.
type SaveResponseFilter func(ctx context.Context, resp *models.SaveResponse, sc *SaveContext) *models.SaveResponse

// Registration is a registered filter
type Registration struct {
	ID       string
	Name     string
	Priority Priority
	Filter   SaveResponseFilter
	seq      int
}

// RegisterOption configures a registration.
type RegisterOption func(*Registration)

// WithPriority sets the filter priority.
func WithPriority(p Priority) RegisterOption {
	return func(r *Registration) {
		r.Priority = p
	}
}

// Registry holds the save-response filters
type Registry struct {
	filters []*Registration
	seq     int
	logger  *logrus.Logger
	mu      sync.RWMutex
}

// NewRegistry creates an empty filter registry
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{logger: logger}
}

// Register adds a filter and returns its registration ID.
// Filters with equal priority run in registration order.
func (r *Registry) Register(name string, filter SaveResponseFilter, opts ...RegisterOption) string {
	reg := &Registration{
		ID:       uuid.New().String(),
		Name:     name,
		Priority: PriorityNormal,
		Filter:   filter,
	}
	for _, opt := range opts {
		opt(reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	reg.seq = r.seq
	r.filters = append(r.filters, reg)
	sort.SliceStable(r.filters, func(i, j int) bool {
		if r.filters[i].Priority != r.filters[j].Priority {
			return r.filters[i].Priority < r.filters[j].Priority
		}
		return r.filters[i].seq < r.filters[j].seq
	})

	r.logger.WithFields(logrus.Fields{
		"id":       reg.ID,
		"name":     name,
		"priority": reg.Priority,
	}).Debug("Registered save response filter")

	return reg.ID
}

// Unregister removes a filter by its registration ID
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.filters {
		if reg.ID == id {
			r.filters = append(r.filters[:i], r.filters[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered filters
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filters)
}

// Apply runs every filter in priority order. A panicking filter is logged and skipped.
func (r *Registry) Apply(ctx context.Context, resp *models.SaveResponse, sc *SaveContext) *models.SaveResponse {
	r.mu.RLock()
	filters := make([]*Registration, len(r.filters))
	copy(filters, r.filters)
	r.mu.RUnlock()

	if sc == nil {
		sc = &SaveContext{}
	}

	for _, reg := range filters {
		next, err := r.call(ctx, reg, resp, sc)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"filter": reg.Name,
				"error":  err.Error(),
			}).Warn("Save response filter failed")
			continue
		}
		if next != nil {
			resp = next
		}
	}
	return resp
}

func (r *Registry) call(ctx context.Context, reg *Registration, resp *models.SaveResponse, sc *SaveContext) (*models.SaveResponse, error) {
	var out *models.SaveResponse
	var pc panics.Catcher
	pc.Try(func() {
		out = reg.Filter(ctx, resp, sc)
	})
	if recovered := pc.Recovered(); recovered != nil {
		return nil, recovered.AsError()
	}
	return out, nil
}
