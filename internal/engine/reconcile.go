package engine

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconcileResult summarizes a reconciliation sweep over one budget.
type ReconcileResult struct {
	Allocations    int // Number of allocations checked
	TotalsRepaired int // Number of cached running totals that differed from the ledger
	AlertsEmitted  int // Number of alerts emitted for crossings missed by a crash
	AlertsResolved int // Number of alerts auto-resolved, 0 unless the policy is enabled
}

// Reconcile re-derives the cached running totals of all allocations of a
// budget from the consumption event ledger and re-runs the threshold
// evaluation.
//
// The ledger append is the durable fact: if a crash interrupted a posting
// between the append and the alert evaluation, this sweep repairs the
// cached total and emits the missing alerts. Alert emission is idempotent,
// running the sweep repeatedly is safe.
func (e *Engine) Reconcile(budgetID uuid.UUID) (ReconcileResult, error) {
	var budget models.Budget
	err := e.db.First(&budget, budgetID).Error
	if err != nil {
		return ReconcileResult{}, err
	}

	err = e.locks.acquire(budgetID, e.options.LockTimeout)
	if err != nil {
		return ReconcileResult{}, err
	}
	defer e.locks.release(budgetID)

	var result ReconcileResult
	var activated []models.Alert

	err = e.db.Transaction(func(tx *gorm.DB) error {
		// Re-read under the lock so the sweep is based on the
		// latest committed state
		err := tx.First(&budget, budgetID).Error
		if err != nil {
			return err
		}

		var allocations []models.Allocation
		err = tx.Where(&models.Allocation{BudgetID: budgetID}).Find(&allocations).Error
		if err != nil {
			return err
		}

		for _, allocation := range allocations {
			result.Allocations++

			consumed, err := ledgerSum(tx, allocation.ID)
			if err != nil {
				return err
			}

			if !consumed.Equal(allocation.Consumed) {
				// UpdateColumn skips the hooks, superseded
				// allocations get their cache repaired too
				err = tx.Model(&allocation).UpdateColumn("consumed", consumed).Error
				if err != nil {
					return err
				}

				allocation.Consumed = consumed
				result.TotalsRepaired++
			}

			if allocation.Superseded {
				continue
			}

			ratio := allocation.Ratio(budget)

			alerts, err := e.emitAlerts(tx, budget, allocation, decimal.Zero, ratio)
			if err != nil {
				return err
			}

			activated = append(activated, alerts...)
			result.AlertsEmitted += len(alerts)

			if e.options.AutoResolveAlerts {
				resolved, err := autoResolve(tx, allocation, ratio)
				if err != nil {
					return err
				}

				result.AlertsResolved += resolved
			}
		}

		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	e.notifyAll(activated)

	return result, nil
}

// ledgerSum returns the sum of all consumption events of an allocation.
func ledgerSum(tx *gorm.DB, allocationID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := tx.Model(&models.ConsumptionEvent{}).
		Where(&models.ConsumptionEvent{AllocationID: allocationID}).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}

// autoResolve resolves active alerts whose threshold lies above the
// current consumption ratio again, e.g. after a reversed expense.
func autoResolve(tx *gorm.DB, allocation models.Allocation, ratio decimal.Decimal) (int, error) {
	var alerts []models.Alert
	err := tx.Where(&models.Alert{
		AllocationID: allocation.ID,
		Status:       models.AlertStatusActive,
	}).Find(&alerts).Error
	if err != nil {
		return 0, err
	}

	percent := ratio.Mul(decimal.NewFromInt(100))

	resolved := 0
	for _, alert := range alerts {
		if percent.GreaterThanOrEqual(alert.Threshold) {
			continue
		}

		err = alert.Transition(tx, models.AlertStatusResolved)
		if err != nil && !errors.Is(err, models.ErrAlertTransitionInvalid) {
			return resolved, err
		}

		resolved++
	}

	return resolved, nil
}
