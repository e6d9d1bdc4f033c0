// Package gate implements the synchronous pre-commit validation pass run on
// every save request. A Gate re-sanitizes every pending value and either blocks
// the save, reporting every invalid setting at once, or lets it proceed with the
// sanitized values.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/metrics"
	handlers "github.com/wso2/customize-validation-api/internal/setting_type_handlers"
	"github.com/wso2/customize-validation-api/internal/settings"
	"github.com/wso2/customize-validation-api/pkg/ordered"
)

// State of a gate
type State int

const (
	StateIdle State = iota
	StateValidating
	StateBlocked
	StateProceeding
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateBlocked:
		return "blocked"
	case StateProceeding:
		return "proceeding"
	default:
		return "unknown"
	}
}

// ErrGateUsed is returned when Validate is called on a gate that already ran
var ErrGateUsed = errors.New("gate has already validated a batch")

// Result is the outcome of one validation pass
type Result struct {
	State State

	// InvalidSettings maps setting IDs to messages in submission order
	InvalidSettings *ordered.Map[string]

	// Sanitized maps setting IDs to the values to persist in submission order.
	// It is only meaningful when State is StateProceeding.
	Sanitized *ordered.Map[interface{}]
}

// Blocked reports whether the save must be aborted
func (r *Result) Blocked() bool {
	return r.State == StateBlocked
}

// InvalidCount returns the number of rejected settings
func (r *Result) InvalidCount() int {
	return r.InvalidSettings.Len()
}

// Summary returns the human readable count based message
func (r *Result) Summary() string {
	return InvalidSummary(r.InvalidCount())
}

// InvalidSummary returns "There is 1 invalid setting." or "There are N invalid settings."
func InvalidSummary(n int) string {
	if n == 1 {
		return "There is 1 invalid setting."
	}
	return fmt.Sprintf("There are %d invalid settings.", n)
}

// Gate validates one save batch. A Gate is single use; create one per request.
type Gate struct {
	registry            *settings.Registry
	invalidValueMessage string
	logger              *logrus.Logger
	metrics             *metrics.Metrics

	state  State
	result *Result
}

// Option configures a Gate
type Option func(*Gate)

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithInvalidValueMessage sets the message used for bare rejections
func WithInvalidValueMessage(msg string) Option {
	return func(g *Gate) {
		if msg != "" {
			g.invalidValueMessage = msg
		}
	}
}

// New creates an idle gate over registry
func New(registry *settings.Registry, opts ...Option) *Gate {
	g := &Gate{
		registry:            registry,
		invalidValueMessage: config.DefaultInvalidValueMessage,
		state:               StateIdle,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logrus.StandardLogger()
	}
	return g
}

// State returns the current state
func (g *Gate) State() State {
	return g.state
}

// Result returns the result of the pass, or nil while idle
func (g *Gate) Result() *Result {
	return g.result
}

// Validate sanitizes every pending value and decides whether the save may proceed.
// Unknown setting IDs and null values are skipped. Rejections never stop the pass.
func (g *Gate) Validate(ctx context.Context, pending *ordered.Map[interface{}]) (*Result, error) {
	if g.state != StateIdle {
		return nil, ErrGateUsed
	}
	g.state = StateValidating

	result := &Result{
		InvalidSettings: ordered.NewMap[string](),
		Sanitized:       ordered.NewMap[interface{}](),
	}
	vctx := handlers.WithValidation(ctx)

	pending.Each(func(id string, raw interface{}) bool {
		setting := g.registry.Get(id)
		if setting == nil {
			g.logger.WithField("setting_id", id).Debug("Skipping unknown setting")
			return true
		}
		if raw == nil {
			return true
		}

		if empty, ok := setting.EmptyInstance(raw); ok {
			result.Sanitized.Set(id, empty)
			return true
		}

		sanitized, err := setting.Sanitize(vctx, raw)
		switch {
		case err != nil:
			result.InvalidSettings.Set(id, g.messageFor(err))
		case sanitized == nil:
			result.InvalidSettings.Set(id, g.invalidValueMessage)
		default:
			result.Sanitized.Set(id, sanitized)
		}
		return true
	})

	if result.InvalidSettings.Len() > 0 {
		result.State = StateBlocked
		g.logger.WithFields(logrus.Fields{
			"invalid_count": result.InvalidSettings.Len(),
			"invalid_ids":   result.InvalidSettings.Keys(),
		}).Info("Save blocked by invalid settings")
		g.metrics.RecordGateOutcome(metrics.OutcomeBlocked, result.InvalidSettings.Len())
	} else {
		result.State = StateProceeding
		g.logger.WithField("setting_count", result.Sanitized.Len()).Info("Save validation passed")
		g.metrics.RecordGateOutcome(metrics.OutcomeProceeding, 0)
	}

	g.state = result.State
	g.result = result
	return result, nil
}

func (g *Gate) messageFor(err error) string {
	var ive *handlers.InvalidValueError
	if errors.As(err, &ive) && ive.Message != "" {
		return ive.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return g.invalidValueMessage
}
