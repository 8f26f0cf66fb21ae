package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxBudgetDepth is the maximum nesting depth for budgets.
// A root budget has depth 1.
const MaxBudgetDepth = 5

// BudgetStatus is the position of a budget in its approval lifecycle.
type BudgetStatus string

const (
	BudgetStatusDraft    BudgetStatus = "draft"
	BudgetStatusPending  BudgetStatus = "pending"
	BudgetStatusApproved BudgetStatus = "approved"
	BudgetStatusRejected BudgetStatus = "rejected"
)

// BudgetType is the period granularity of a budget.
type BudgetType string

const (
	BudgetTypeAnnual    BudgetType = "annual"
	BudgetTypeQuarterly BudgetType = "quarterly"
	BudgetTypeMonthly   BudgetType = "monthly"
	BudgetTypeProject   BudgetType = "project"
)

// Budget represents a bounded financial allotment for a period.
//
// A budget is the highest level of organization in Ledgerline, all other
// resources reference it directly or transitively. Budgets can be nested
// up to MaxBudgetDepth levels via the Parent reference.
type Budget struct {
	DefaultModel
	Code           string          `json:"code" gorm:"uniqueIndex" example:"FY26-IT-001"`                // Unique code of the budget
	Name           string          `json:"name" example:"IT department 2026" default:""`                 // Name of the budget
	Note           string          `json:"note" example:"Includes the laptop refresh" default:""`        // Note about the budget
	Currency       string          `json:"currency" example:"EUR" default:""`                            // ISO 4217 code of the budget currency
	FiscalYear     int             `json:"fiscalYear" example:"2026"`                                    // Fiscal year the budget belongs to
	PeriodStart    types.Date      `json:"periodStart" example:"2026-01-01T00:00:00Z"`                   // First day of the budget period
	PeriodEnd      types.Date      `json:"periodEnd" example:"2026-12-31T00:00:00Z"`                     // Last day of the budget period
	Type           BudgetType      `json:"type" example:"annual" default:"annual"`                       // Period granularity
	Department     string          `json:"department" example:"IT" default:""`                           // Owning department
	Project        string          `json:"project" example:"" default:""`                                // Owning project, if any
	ParentID       *uuid.UUID      `json:"parentId" example:"f3b8b78d-d188-4591-9bcb-9a3e4eb5bfc3"`      // ID of the parent budget, null for root budgets
	Parent         *Budget         `json:"-"`
	Revenue        decimal.Decimal `json:"revenue" gorm:"type:DECIMAL(20,8)" example:"0"`                // Planned revenue
	Cost           decimal.Decimal `json:"cost" gorm:"type:DECIMAL(20,8)" example:"1200000"`             // Planned cost of goods
	Expense        decimal.Decimal `json:"expense" gorm:"type:DECIMAL(20,8)" example:"300000"`           // Planned operating expense
	Total          decimal.Decimal `json:"total" gorm:"type:DECIMAL(20,8)" example:"1500000"`            // Computed as revenue - cost - expense
	Status         BudgetStatus    `json:"status" gorm:"default:draft" example:"draft" default:"draft"`  // Lifecycle status
	ApprovalLevels uint8           `json:"approvalLevels" gorm:"default:1" example:"2" default:"1"`      // Number of approval levels required for activation
	CreatedBy      string          `json:"createdBy" example:"jdoe" default:""`                          // Identity that created the budget
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Code = strings.TrimSpace(b.Code)
	b.Name = strings.TrimSpace(b.Name)
	b.Note = strings.TrimSpace(b.Note)

	if b.Type == "" {
		b.Type = BudgetTypeAnnual
	}

	switch b.Type {
	case BudgetTypeAnnual, BudgetTypeQuarterly, BudgetTypeMonthly, BudgetTypeProject:
	default:
		return ErrBudgetTypeInvalid
	}

	if b.PeriodEnd.Before(b.PeriodStart) {
		return ErrBudgetPeriodInvalid
	}

	if b.FiscalYear == 0 && !b.PeriodStart.IsZero() {
		b.FiscalYear = types.FiscalYearOf(b.PeriodStart)
	}

	if b.ApprovalLevels == 0 {
		b.ApprovalLevels = 1
	}

	// The total is never accepted from callers
	b.Total = b.Revenue.Sub(b.Cost).Sub(b.Expense)

	return nil
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	_ = b.DefaultModel.BeforeCreate(tx)

	if b.Status == "" {
		b.Status = BudgetStatusDraft
	}

	toSave := tx.Statement.Dest.(*Budget)
	return b.checkDepth(tx, *toSave)
}

func (b *Budget) BeforeUpdate(tx *gorm.DB) error {
	// Approved budgets are immutable, adjustments happen through child
	// budgets. The only actor changing an approved budget would be the
	// approval chain, which never touches budgets past approval.
	if b.Status == BudgetStatusApproved {
		return ErrBudgetApprovedImmutable
	}

	if tx.Statement.Changed("ParentID") {
		toSave, ok := tx.Statement.Dest.(Budget)
		if !ok {
			return ErrGeneral
		}

		return b.checkDepth(tx, toSave)
	}

	return nil
}

// checkDepth verifies that inserting the budget below its parent does not
// nest budgets deeper than MaxBudgetDepth. The depth is computed by walking
// the parent chain at insert time.
func (b *Budget) checkDepth(tx *gorm.DB, toSave Budget) error {
	if toSave.ParentID == nil {
		return nil
	}

	var parent Budget
	err := tx.First(&parent, toSave.ParentID).Error
	if err != nil {
		return err
	}

	depth, err := parent.Depth(tx)
	if err != nil {
		return err
	}

	if depth+1 > MaxBudgetDepth {
		return ErrBudgetDepthExceeded
	}

	return nil
}

// Depth returns the nesting depth of the budget. A root budget has depth 1.
func (b Budget) Depth(tx *gorm.DB) (int, error) {
	depth := 1
	current := b

	for current.ParentID != nil {
		// Walking stops as soon as the limit is exceeded so that a
		// reference cycle cannot make this loop forever.
		if depth > MaxBudgetDepth {
			return depth, ErrBudgetDepthExceeded
		}

		var parent Budget
		err := tx.First(&parent, current.ParentID).Error
		if err != nil {
			return 0, err
		}

		depth++
		current = parent
	}

	return depth, nil
}

// Path returns the budgets from the root budget down to this budget.
func (b Budget) Path(tx *gorm.DB) ([]Budget, error) {
	path := []Budget{b}
	current := b

	for current.ParentID != nil {
		if len(path) > MaxBudgetDepth {
			return nil, ErrBudgetDepthExceeded
		}

		var parent Budget
		err := tx.First(&parent, current.ParentID).Error
		if err != nil {
			return nil, err
		}

		path = append([]Budget{parent}, path...)
		current = parent
	}

	return path, nil
}

// Allocated returns the sum of the effective amounts of all allocations
// that are currently in effect for the budget.
func (b Budget) Allocated(tx *gorm.DB) (decimal.Decimal, error) {
	var allocations []Allocation
	err := tx.Where(&Allocation{BudgetID: b.ID}).Where("superseded = ?", false).Find(&allocations).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, allocation := range allocations {
		sum = sum.Add(allocation.EffectiveAmount(b))
	}

	return sum, nil
}

// Returns all budgets on this instance for export
func (Budget) Export() (json.RawMessage, error) {
	var budgets []Budget
	err := DB.Unscoped().Where(&Budget{}).Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&budgets)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
