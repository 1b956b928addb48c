package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertCondition is the comparison direction of a threshold rule.
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// Valid reports whether c is a known condition.
func (c AlertCondition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow
}

// AlertRule is a threshold condition on one (device, metric) pair.
// Rules are soft-deleted (active=false) so trigger history stays resolvable.
type AlertRule struct {
	ID        uuid.UUID      `json:"id"`
	DeviceID  uuid.UUID      `json:"deviceId"`
	Metric    MetricKind     `json:"kind"`
	Condition AlertCondition `json:"condition"`
	Threshold float64        `json:"threshold"`
	Email     string         `json:"email"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AlertRuleCreate is the body of POST /api/alerts.
type AlertRuleCreate struct {
	DeviceID  uuid.UUID      `json:"deviceId" binding:"required"`
	Metric    MetricKind     `json:"kind" binding:"required"`
	Condition AlertCondition `json:"condition" binding:"required"`
	Threshold float64        `json:"threshold"`
	Email     string         `json:"email" binding:"required,email"`
}

// AlertRulesListResponse wraps a rule collection.
type AlertRulesListResponse struct {
	Data  []AlertRule `json:"data"`
	Count int         `json:"count"`
}

// AlertTrigger is one append-only audit row: a notification that was
// actually sent, never one that was merely evaluated.
type AlertTrigger struct {
	ID             uuid.UUID `json:"id"`
	RuleID         uuid.UUID `json:"ruleId"`
	TriggeredAt    time.Time `json:"triggeredAt"`
	ValueAtTrigger float64   `json:"valueAtTrigger"`
}

// AlertTriggersListResponse wraps a trigger history collection.
type AlertTriggersListResponse struct {
	Data  []AlertTrigger `json:"data"`
	Count int            `json:"count"`
}

// TriggerContext carries everything a channel needs to render a breach
// notification.
type TriggerContext struct {
	Rule       AlertRule
	DeviceName string
	Metric     MetricKind
	Value      float64 // normalized when the kind requires it
	RawValue   float64
	OccurredAt time.Time
}
