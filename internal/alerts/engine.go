// Package alerts evaluates threshold rules against freshly committed
// readings. Cooldown is never held in process memory: the store's
// conditional trigger insert is the serialization point, so multiple
// replicas cannot double-fire one rule.
package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"garden-core/internal/logging"
	"garden-core/internal/metrics"
	"garden-core/internal/models"
)

// RuleStore is the slice of the store the engine needs.
type RuleStore interface {
	ActiveRules(ctx context.Context, deviceID uuid.UUID, metric models.MetricKind) ([]models.AlertRule, error)
	TryInsertTrigger(ctx context.Context, ruleID uuid.UUID, value float64, cooldown time.Duration) (bool, error)
}

// Dispatcher hands a fired trigger to the notification layer. It must not
// block the ingestion path.
type Dispatcher interface {
	Dispatch(tc models.TriggerContext)
}

// Engine evaluates rules for one (device, metric) at a time.
type Engine struct {
	store      RuleStore
	dispatcher Dispatcher
	logger     *logging.Logger
	cooldown   time.Duration
}

// New constructs an Engine with the process-wide cooldown default.
func New(store RuleStore, dispatcher Dispatcher, logger *logging.Logger, cooldown time.Duration) *Engine {
	return &Engine{store: store, dispatcher: dispatcher, logger: logger, cooldown: cooldown}
}

// Evaluate runs all active rules for (device, metric) against value, which
// is already normalized when the kind requires it. Returns how many rules
// actually fired. One rule's failure never blocks the others: store errors
// are logged and evaluation moves on, and dispatch failures are absorbed
// behind the Dispatcher boundary.
func (e *Engine) Evaluate(ctx context.Context, deviceID uuid.UUID, deviceName string, metric models.MetricKind, value, rawValue float64, at time.Time) int {
	rules, err := e.store.ActiveRules(ctx, deviceID, metric)
	if err != nil {
		e.logger.Errorf("Failed to fetch rules for device %s metric %s: %v", deviceID, metric, err)
		return 0
	}

	fired := 0
	for _, rule := range rules {
		if !breached(rule, value) {
			continue
		}

		inserted, err := e.store.TryInsertTrigger(ctx, rule.ID, rawValue, e.cooldown)
		if err != nil {
			e.logger.Errorf("Trigger insert failed for rule %s: %v", rule.ID, err)
			continue
		}
		if !inserted {
			// Within cooldown: defined silent no-op.
			e.logger.Debugf("Rule %s breach suppressed by cooldown", rule.ID)
			continue
		}

		fired++
		metrics.AlertsTriggered.Inc()
		e.dispatcher.Dispatch(models.TriggerContext{
			Rule:       rule,
			DeviceName: deviceName,
			Metric:     metric,
			Value:      value,
			RawValue:   rawValue,
			OccurredAt: at,
		})
	}
	return fired
}

func breached(rule models.AlertRule, value float64) bool {
	switch rule.Condition {
	case models.ConditionAbove:
		return value > rule.Threshold
	case models.ConditionBelow:
		return value < rule.Threshold
	default:
		return false
	}
}
