package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AlertType is the threshold a consumption ratio crossed.
type AlertType string

const (
	AlertTypeThreshold50  AlertType = "threshold_50"
	AlertTypeThreshold80  AlertType = "threshold_80"
	AlertTypeThreshold90  AlertType = "threshold_90"
	AlertTypeThreshold100 AlertType = "threshold_100"
	AlertTypeOverrun      AlertType = "overrun"
)

// AlertStatus is the position of an alert in its handling lifecycle.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// thresholds lists all alert types in ascending threshold order.
// When a single posting crosses several thresholds, alerts are emitted
// in this order.
var thresholds = []struct {
	alertType AlertType
	ratio     decimal.Decimal
}{
	{AlertTypeThreshold50, decimal.NewFromFloat(0.5)},
	{AlertTypeThreshold80, decimal.NewFromFloat(0.8)},
	{AlertTypeThreshold90, decimal.NewFromFloat(0.9)},
	{AlertTypeThreshold100, decimal.NewFromInt(1)},
}

// Alert is a derived record of a threshold crossing on an allocation.
//
// Alerts are owned by the alert engine: they are emitted exactly once per
// crossing per allocation and fiscal period, which the unique index on
// (allocation, type) enforces since an allocation belongs to exactly one
// budget period.
type Alert struct {
	DefaultModel
	BudgetID     uuid.UUID       `json:"budgetId" example:"550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`                                // ID of the budget the alert belongs to
	Budget       Budget          `json:"-"`
	AllocationID uuid.UUID       `json:"allocationId" gorm:"uniqueIndex:alert_allocation_type" example:"10be20c2-c2d6-455b-b737-8b283e1f6e52"` // ID of the allocation the alert was raised for
	Allocation   Allocation      `json:"-"`
	Type         AlertType       `json:"type" gorm:"uniqueIndex:alert_allocation_type" example:"threshold_80"`                   // The crossed threshold
	Threshold    decimal.Decimal `json:"threshold" gorm:"type:DECIMAL(20,8)" example:"80"`                                       // Threshold percentage
	Actual       decimal.Decimal `json:"actual" gorm:"type:DECIMAL(20,8)" example:"85"`                                          // Actual percentage at the time of computation
	Status       AlertStatus     `json:"status" gorm:"default:active" example:"active" default:"active"`                         // Handling status
}

// ThresholdPercent returns the percentage an alert type represents.
// The overrun type reports 100 since it fires above full consumption.
func (t AlertType) ThresholdPercent() decimal.Decimal {
	for _, threshold := range thresholds {
		if threshold.alertType == t {
			return threshold.ratio.Mul(decimal.NewFromInt(100))
		}
	}

	return decimal.NewFromInt(100)
}

// CrossedThresholds returns the alert types for all thresholds crossed when
// the consumption ratio moves from before to after, in ascending order.
//
// A threshold T counts as crossed when before < T <= after. The overrun
// type fires when the ratio exceeds 1 having been at or below 1 before.
func CrossedThresholds(before, after decimal.Decimal) []AlertType {
	var crossed []AlertType

	for _, threshold := range thresholds {
		if before.LessThan(threshold.ratio) && !after.LessThan(threshold.ratio) {
			crossed = append(crossed, threshold.alertType)
		}
	}

	one := decimal.NewFromInt(1)
	if !before.GreaterThan(one) && after.GreaterThan(one) {
		crossed = append(crossed, AlertTypeOverrun)
	}

	return crossed
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	if a.Status == "" {
		a.Status = AlertStatusActive
	}

	toSave := tx.Statement.Dest.(*Alert)
	return tx.First(&Allocation{}, toSave.AllocationID).Error
}

// Transition moves the alert to a new status, enforcing the
// active → acknowledged → resolved state machine. Skipping acknowledged
// is allowed, an active alert can be resolved directly.
func (a *Alert) Transition(tx *gorm.DB, to AlertStatus) error {
	allowed := map[AlertStatus][]AlertStatus{
		AlertStatusActive:       {AlertStatusAcknowledged, AlertStatusResolved},
		AlertStatusAcknowledged: {AlertStatusResolved},
		AlertStatusResolved:     {},
	}

	for _, status := range allowed[a.Status] {
		if status == to {
			return tx.Model(a).Update("status", to).Error
		}
	}

	return ErrAlertTransitionInvalid
}

// Returns all alerts on this instance for export
func (Alert) Export() (json.RawMessage, error) {
	var alerts []Alert
	err := DB.Unscoped().Where(&Alert{}).Find(&alerts).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&alerts)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
