package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalStatus is the decision state of a single approval step.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
	ApprovalStatusReturned ApprovalStatus = "returned"
)

// ApprovalStep records one level of the approval chain of a budget.
//
// Steps are grouped into submission cycles: when a budget is returned to
// draft and resubmitted, a new cycle starts and the steps of the previous
// cycle stay untouched as audit trail.
type ApprovalStep struct {
	DefaultModel
	BudgetID  uuid.UUID      `json:"budgetId" gorm:"uniqueIndex:approval_step_cycle_level" example:"550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"` // ID of the budget the step belongs to
	Budget    Budget         `json:"-"`
	Cycle     uint           `json:"cycle" gorm:"uniqueIndex:approval_step_cycle_level" example:"1"`                                       // Submission cycle the step belongs to
	Level     uint8          `json:"level" gorm:"uniqueIndex:approval_step_cycle_level" example:"1"`                                       // Ordinal of the step within the chain
	Approver  string         `json:"approver" example:"cfo" default:""`                                                                    // Identity that decided the step, supplied by the external identity service
	Status    ApprovalStatus `json:"status" gorm:"default:pending" example:"pending" default:"pending"`                                    // Decision state
	Comment   string         `json:"comment" example:"Within the agreed headcount plan" default:""`                                       // Comment given with the decision
	DecidedAt *time.Time     `json:"decidedAt" example:"2026-02-01T09:58:00Z"`                                                             // Time the decision was recorded
}

func (s *ApprovalStep) BeforeSave(_ *gorm.DB) error {
	s.Approver = strings.TrimSpace(s.Approver)
	s.Comment = strings.TrimSpace(s.Comment)

	return nil
}

func (s *ApprovalStep) BeforeCreate(tx *gorm.DB) error {
	_ = s.DefaultModel.BeforeCreate(tx)

	if s.Status == "" {
		s.Status = ApprovalStatusPending
	}

	toSave := tx.Statement.Dest.(*ApprovalStep)
	return tx.First(&Budget{}, toSave.BudgetID).Error
}

// Returns all approval steps on this instance for export
func (ApprovalStep) Export() (json.RawMessage, error) {
	var steps []ApprovalStep
	err := DB.Unscoped().Where(&ApprovalStep{}).Find(&steps).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&steps)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
