// Package engine implements the budget allocation and consumption
// tracking operations that need to be serialized per budget: consumption
// posting with threshold evaluation, the approval chain and the
// reconciliation sweep.
package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	"github.com/ledgerline/backend/internal/notify"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultLockTimeout is the bounded wait for the per-budget lock.
const DefaultLockTimeout = 5 * time.Second

// Options configures engine behavior.
type Options struct {
	// LockTimeout is the maximum wait for the per-budget lock.
	// Zero means DefaultLockTimeout.
	LockTimeout time.Duration

	// AutoResolveAlerts resolves active alerts during reconciliation
	// when the consumption ratio has dropped below their threshold
	// again, e.g. after a reversed expense.
	AutoResolveAlerts bool
}

// Engine executes the mutating operations of the budget engine.
type Engine struct {
	db       *gorm.DB
	notifier notify.Notifier
	locks    *lockTable
	options  Options
}

// New returns an Engine using the database and notification channel.
func New(db *gorm.DB, notifier notify.Notifier, options Options) *Engine {
	if options.LockTimeout == 0 {
		options.LockTimeout = DefaultLockTimeout
	}

	if notifier == nil {
		notifier = notify.Discard{}
	}

	return &Engine{
		db:       db,
		notifier: notifier,
		locks:    newLockTable(),
		options:  options,
	}
}

// PostingResult is returned by PostConsumption.
type PostingResult struct {
	Event    models.ConsumptionEvent
	Consumed decimal.Decimal
	Ratio    decimal.Decimal
	Alerts   []models.Alert
}

// PostConsumption appends a consumption event to the ledger of an
// allocation, updates the cached running total in the same transaction
// and evaluates the alert thresholds synchronously.
//
// The allocation must belong to an approved budget. A retried posting
// with a reference that is already recorded fails with
// ErrConsumptionDuplicate and does not double-count.
func (e *Engine) PostConsumption(event models.ConsumptionEvent) (PostingResult, error) {
	var allocation models.Allocation
	err := e.db.First(&allocation, event.AllocationID).Error
	if err != nil {
		return PostingResult{}, err
	}

	if allocation.Superseded {
		return PostingResult{}, models.ErrAllocationSuperseded
	}

	err = e.locks.acquire(allocation.BudgetID, e.options.LockTimeout)
	if err != nil {
		return PostingResult{}, err
	}
	defer e.locks.release(allocation.BudgetID)

	var result PostingResult
	var activated []models.Alert

	err = e.db.Transaction(func(tx *gorm.DB) error {
		// Re-read under the lock so the ratio is based on the
		// latest committed totals
		err := tx.First(&allocation, event.AllocationID).Error
		if err != nil {
			return err
		}

		var budget models.Budget
		err = tx.First(&budget, allocation.BudgetID).Error
		if err != nil {
			return err
		}

		if budget.Status != models.BudgetStatusApproved {
			return models.ErrBudgetNotApproved
		}

		err = tx.Create(&event).Error
		if err != nil {
			return err
		}

		before := allocation.Ratio(budget)

		consumed := allocation.Consumed.Add(event.Amount)
		err = tx.Model(&allocation).Update("consumed", consumed).Error
		if err != nil {
			return err
		}
		allocation.Consumed = consumed

		after := allocation.Ratio(budget)

		alerts, err := e.emitAlerts(tx, budget, allocation, before, after)
		if err != nil {
			return err
		}

		activated = alerts
		result = PostingResult{
			Event:    event,
			Consumed: consumed,
			Ratio:    after,
			Alerts:   alerts,
		}

		return nil
	})
	if err != nil {
		return PostingResult{}, err
	}

	e.notifyAll(activated)

	return result, nil
}

// ConsumptionRatio returns consumed / allocated for an allocation.
// Allocations without an allocated amount have a ratio of 0.
func (e *Engine) ConsumptionRatio(allocationID uuid.UUID) (decimal.Decimal, error) {
	var allocation models.Allocation
	err := e.db.First(&allocation, allocationID).Error
	if err != nil {
		return decimal.Zero, err
	}

	var budget models.Budget
	err = e.db.First(&budget, allocation.BudgetID).Error
	if err != nil {
		return decimal.Zero, err
	}

	return allocation.Ratio(budget), nil
}

// emitAlerts creates an alert for every threshold crossed between the two
// ratios, in ascending threshold order. Crossings that already have an
// alert are skipped, emission is idempotent per allocation and threshold.
func (e *Engine) emitAlerts(tx *gorm.DB, budget models.Budget, allocation models.Allocation, before, after decimal.Decimal) ([]models.Alert, error) {
	var alerts []models.Alert

	for _, alertType := range models.CrossedThresholds(before, after) {
		alert := models.Alert{
			BudgetID:     budget.ID,
			AllocationID: allocation.ID,
			Type:         alertType,
			Threshold:    alertType.ThresholdPercent(),
			Actual:       after.Mul(decimal.NewFromInt(100)),
			Status:       models.AlertStatusActive,
		}

		err := tx.Create(&alert).Error
		if errors.Is(err, models.ErrAlertExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// notifyAll sends a notification for every activated alert.
// Delivery runs detached from the request, failures are logged and not
// retried.
func (e *Engine) notifyAll(alerts []models.Alert) {
	for _, alert := range alerts {
		go func(alert models.Alert) {
			err := e.notifier.AlertActivated(alert)
			if err != nil {
				log.Error().Err(err).Str("alert", alert.ID.String()).Msg("alert notification failed")
			}
		}(alert)
	}
}
