package engine

import (
	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	"gorm.io/gorm"
)

// ApprovalAction is a decision recorded for an approval step.
type ApprovalAction string

const (
	ApprovalActionApprove ApprovalAction = "approve"
	ApprovalActionReject  ApprovalAction = "reject"
	ApprovalActionReturn  ApprovalAction = "return"
)

// Valid reports whether the action is one of the known decisions.
func (a ApprovalAction) Valid() bool {
	switch a {
	case ApprovalActionApprove, ApprovalActionReject, ApprovalActionReturn:
		return true
	}

	return false
}

// Submit moves a draft budget to pending and opens a new submission
// cycle with a pending approval step at level 1.
func (e *Engine) Submit(budgetID uuid.UUID) (models.ApprovalStep, error) {
	err := e.locks.acquire(budgetID, e.options.LockTimeout)
	if err != nil {
		return models.ApprovalStep{}, err
	}
	defer e.locks.release(budgetID)

	var step models.ApprovalStep

	err = e.db.Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		err := tx.First(&budget, budgetID).Error
		if err != nil {
			return err
		}

		if budget.Status != models.BudgetStatusDraft {
			return models.ErrBudgetNotDraft
		}

		cycle, err := currentCycle(tx, budgetID)
		if err != nil {
			return err
		}

		err = tx.Model(&budget).Update("status", models.BudgetStatusPending).Error
		if err != nil {
			return err
		}

		step = models.ApprovalStep{
			BudgetID: budgetID,
			Cycle:    cycle + 1,
			Level:    1,
			Status:   models.ApprovalStatusPending,
		}

		return tx.Create(&step).Error
	})
	if err != nil {
		return models.ApprovalStep{}, err
	}

	return step, nil
}

// RecordApproval records the decision for one level of the approval chain
// of a pending budget.
//
// Decisions are accepted strictly in level order: the level given must be
// the one pending step of the current submission cycle. On approval of
// the final configured level the budget becomes approved, a rejection
// makes it rejected and a return puts it back into draft with all steps
// of the cycle marked returned for the audit trail.
func (e *Engine) RecordApproval(budgetID uuid.UUID, level uint8, action ApprovalAction, approver, comment string) (models.ApprovalStep, error) {
	if !action.Valid() {
		return models.ApprovalStep{}, models.ErrApprovalActionInvalid
	}

	err := e.locks.acquire(budgetID, e.options.LockTimeout)
	if err != nil {
		return models.ApprovalStep{}, err
	}
	defer e.locks.release(budgetID)

	var step models.ApprovalStep

	err = e.db.Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		err := tx.First(&budget, budgetID).Error
		if err != nil {
			return err
		}

		if budget.Status != models.BudgetStatusPending {
			return models.ErrBudgetNotPending
		}

		cycle, err := currentCycle(tx, budgetID)
		if err != nil {
			return err
		}

		err = tx.Where(&models.ApprovalStep{
			BudgetID: budgetID,
			Cycle:    cycle,
			Status:   models.ApprovalStatusPending,
		}).First(&step).Error
		if err != nil {
			return err
		}

		if step.Level != level {
			return models.ErrApprovalOutOfOrder
		}

		now := tx.NowFunc()
		decision := map[string]any{
			"approver":   approver,
			"comment":    comment,
			"decided_at": &now,
		}

		switch action {
		case ApprovalActionApprove:
			decision["status"] = models.ApprovalStatusApproved
			err = tx.Model(&step).Updates(decision).Error
			if err != nil {
				return err
			}

			if step.Level >= budget.ApprovalLevels {
				return tx.Model(&budget).Update("status", models.BudgetStatusApproved).Error
			}

			next := models.ApprovalStep{
				BudgetID: budgetID,
				Cycle:    cycle,
				Level:    step.Level + 1,
				Status:   models.ApprovalStatusPending,
			}
			return tx.Create(&next).Error

		case ApprovalActionReject:
			decision["status"] = models.ApprovalStatusRejected
			err = tx.Model(&step).Updates(decision).Error
			if err != nil {
				return err
			}

			return tx.Model(&budget).Update("status", models.BudgetStatusRejected).Error

		default: // ApprovalActionReturn
			decision["status"] = models.ApprovalStatusReturned
			err = tx.Model(&step).Updates(decision).Error
			if err != nil {
				return err
			}

			// Earlier steps of this cycle are part of the audit
			// trail and marked returned, never deleted
			err = tx.Model(&models.ApprovalStep{}).
				Where(&models.ApprovalStep{BudgetID: budgetID, Cycle: cycle}).
				Where("status = ?", models.ApprovalStatusApproved).
				Update("status", models.ApprovalStatusReturned).Error
			if err != nil {
				return err
			}

			return tx.Model(&budget).Update("status", models.BudgetStatusDraft).Error
		}
	})
	if err != nil {
		return models.ApprovalStep{}, err
	}

	return step, nil
}

// currentCycle returns the highest submission cycle recorded for the
// budget, 0 when it has never been submitted.
func currentCycle(tx *gorm.DB, budgetID uuid.UUID) (uint, error) {
	var cycle *uint

	err := tx.Model(&models.ApprovalStep{}).
		Where(&models.ApprovalStep{BudgetID: budgetID}).
		Select("MAX(cycle)").
		Scan(&cycle).Error
	if err != nil {
		return 0, err
	}

	if cycle == nil {
		return 0, nil
	}

	return *cycle, nil
}
