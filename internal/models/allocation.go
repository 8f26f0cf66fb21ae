package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationMethod describes how the amount of an allocation is derived.
type AllocationMethod string

const (
	AllocationMethodFixed      AllocationMethod = "fixed"
	AllocationMethodPercentage AllocationMethod = "percentage"
	AllocationMethodHistorical AllocationMethod = "historical"
)

// Allocation subdivides a budget and assigns a part of it to an account code.
//
// Allocations are never deleted. A reallocation supersedes the existing
// allocation and creates a new one, so that consumption events always keep
// a valid allocation to reference.
type Allocation struct {
	DefaultModel
	BudgetID    uuid.UUID        `json:"budgetId" example:"550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`   // ID of the budget the allocation belongs to
	Budget      Budget           `json:"-"`
	AccountCode string           `json:"accountCode" example:"7001"`                                 // Account code the allocation is assigned to. May contain * as wildcard for account groups
	Method      AllocationMethod `json:"method" example:"fixed" default:"fixed"`                     // How the allocated amount is derived
	Amount      decimal.Decimal  `json:"amount" gorm:"type:DECIMAL(20,8)" example:"15000000"`        // Allocated amount for the fixed and historical methods
	Percentage  decimal.Decimal  `json:"percentage" gorm:"type:DECIMAL(20,8)" example:"25"`          // Percentage of the budget total for the percentage method
	Consumed    decimal.Decimal  `json:"consumed" gorm:"type:DECIMAL(20,8)" example:"12000000"`      // Running total of all consumption events, maintained transactionally
	Superseded  bool             `json:"superseded" example:"false" default:"false"`                 // True once the allocation has been replaced by a reallocation
}

func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	a.AccountCode = strings.TrimSpace(a.AccountCode)

	if a.Method == "" {
		a.Method = AllocationMethodFixed
	}

	switch a.Method {
	case AllocationMethodFixed, AllocationMethodPercentage, AllocationMethodHistorical:
	default:
		return ErrAllocationMethodInvalid
	}

	if a.Method == AllocationMethodPercentage {
		if !a.Percentage.IsPositive() || a.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ErrAllocationPercentageInvalid
		}
	}

	return nil
}

func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Allocation)
	return a.checkCommitment(tx, *toSave)
}

func (a *Allocation) BeforeUpdate(tx *gorm.DB) error {
	if a.Superseded && !tx.Statement.Changed("Superseded") {
		return ErrAllocationSuperseded
	}

	if tx.Statement.Changed("Amount", "Percentage", "Method", "BudgetID") {
		toSave, ok := tx.Statement.Dest.(Allocation)
		if !ok {
			return ErrGeneral
		}

		// The stored row no longer counts towards the committed sum
		toSave.ID = a.ID
		if toSave.BudgetID == uuid.Nil {
			toSave.BudgetID = a.BudgetID
		}
		if toSave.Method == "" {
			toSave.Method = a.Method
		}

		return a.checkCommitment(tx, toSave)
	}

	return nil
}

// checkCommitment verifies that the sum of all in-effect allocations of the
// budget, including the one to be saved, does not exceed the budget total.
//
// The check uses the latest committed totals. Postings racing with an
// allocation change are serialized by the engine's per-budget lock.
func (a *Allocation) checkCommitment(tx *gorm.DB, toSave Allocation) error {
	var budget Budget
	err := tx.First(&budget, toSave.BudgetID).Error
	if err != nil {
		return err
	}

	var siblings []Allocation
	err = tx.Where(&Allocation{BudgetID: budget.ID}).Where("superseded = ?", false).Find(&siblings).Error
	if err != nil {
		return err
	}

	sum := toSave.EffectiveAmount(budget)
	for _, sibling := range siblings {
		if sibling.ID == toSave.ID {
			continue
		}

		sum = sum.Add(sibling.EffectiveAmount(budget))
	}

	if sum.GreaterThan(budget.Total) {
		return ErrAllocationOverCommitted
	}

	return nil
}

// EffectiveAmount returns the amount the allocation assigns, derived
// according to its method.
func (a Allocation) EffectiveAmount(budget Budget) decimal.Decimal {
	if a.Method == AllocationMethodPercentage {
		return budget.Total.Mul(a.Percentage).Div(decimal.NewFromInt(100))
	}

	return a.Amount
}

// Ratio returns the consumption ratio of the allocation.
// An allocation without an allocated amount has a ratio of 0.
func (a Allocation) Ratio(budget Budget) decimal.Decimal {
	allocated := a.EffectiveAmount(budget)
	if allocated.IsZero() {
		return decimal.Zero
	}

	return a.Consumed.Div(allocated)
}

// Path returns the budgets from the root budget down to the budget owning
// the allocation. The threshold alert engine uses it to determine which
// budgets' thresholds apply.
func (a Allocation) Path(tx *gorm.DB) ([]Budget, error) {
	var budget Budget
	err := tx.First(&budget, a.BudgetID).Error
	if err != nil {
		return nil, err
	}

	return budget.Path(tx)
}

// Returns all allocations on this instance for export
func (Allocation) Export() (json.RawMessage, error) {
	var allocations []Allocation
	err := DB.Unscoped().Where(&Allocation{}).Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&allocations)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
