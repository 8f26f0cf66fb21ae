package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	"github.com/ledgerline/backend/internal/types"
	ll_uuid "github.com/ledgerline/backend/internal/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetEditable represents all user configurable parameters
type BudgetEditable struct {
	Code           string          `json:"code" example:"FY26-IT-001"`                                           // Unique code of the budget
	Name           string          `json:"name" example:"IT department 2026" default:""`                         // Name of the budget
	Note           string          `json:"note" example:"Includes the laptop refresh" default:""`                // Note about the budget
	Currency       string          `json:"currency" example:"EUR" default:""`                                    // ISO 4217 code of the budget currency
	PeriodStart    types.Date      `json:"periodStart" example:"2026-01-01"`                                     // First day of the budget period
	PeriodEnd      types.Date      `json:"periodEnd" example:"2026-12-31"`                                       // Last day of the budget period
	Type           models.BudgetType `json:"type" example:"annual" default:"annual"`                             // Period granularity
	Department     string          `json:"department" example:"IT" default:""`                                   // Owning department
	Project        string          `json:"project" example:"" default:""`                                        // Owning project, if any
	ParentID       *uuid.UUID      `json:"parentId" example:"f3b8b78d-d188-4591-9bcb-9a3e4eb5bfc3"`              // ID of the parent budget, null for root budgets
	Revenue        decimal.Decimal `json:"revenue" example:"0"`                        // Planned revenue
	Cost           decimal.Decimal `json:"cost" example:"1200000"`                     // Planned cost of goods
	Expense        decimal.Decimal `json:"expense" example:"300000"`                   // Planned operating expense
	ApprovalLevels uint8           `json:"approvalLevels" example:"2" default:"1"`                               // Number of approval levels required for activation
	CreatedBy      string          `json:"createdBy" example:"jdoe" default:""`                                  // Identity that created the budget
}

func (editable BudgetEditable) model() models.Budget {
	return models.Budget{
		Code:           editable.Code,
		Name:           editable.Name,
		Note:           editable.Note,
		Currency:       editable.Currency,
		PeriodStart:    editable.PeriodStart,
		PeriodEnd:      editable.PeriodEnd,
		Type:           editable.Type,
		Department:     editable.Department,
		Project:        editable.Project,
		ParentID:       editable.ParentID,
		Revenue:        editable.Revenue,
		Cost:           editable.Cost,
		Expense:        editable.Expense,
		ApprovalLevels: editable.ApprovalLevels,
		CreatedBy:      editable.CreatedBy,
	}
}

type BudgetLinks struct {
	Self          string `json:"self" example:"https://example.com/api/v1/budgets/550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`                    // The budget itself
	Children      string `json:"children" example:"https://example.com/api/v1/budgets/550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab/children"`       // Direct child budgets
	Allocations   string `json:"allocations" example:"https://example.com/api/v1/allocations?budget=550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`  // Allocations for this budget
	Alerts        string `json:"alerts" example:"https://example.com/api/v1/alerts?budget=550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`            // Alerts for this budget
	ApprovalSteps string `json:"approvalSteps" example:"https://example.com/api/v1/approval-steps?budget=550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"` // Approval audit trail for this budget
}

type Budget struct {
	models.DefaultModel
	BudgetEditable
	Links BudgetLinks `json:"links"`

	// These fields are computed
	FiscalYear int             `json:"fiscalYear" example:"2026"`                           // Fiscal year derived from the period start
	Status     models.BudgetStatus `json:"status" example:"draft"`                          // Lifecycle status
	Total      decimal.Decimal `json:"total" example:"1500000"`                             // Computed as revenue - cost - expense
	Allocated  decimal.Decimal `json:"allocated" example:"1100000"`                         // Sum of all non-superseded allocations
}

func newBudget(c *gin.Context, db *gorm.DB, model models.Budget) (Budget, error) {
	url := c.GetString(string(models.DBContextURL))

	allocated, err := model.Allocated(db)
	if err != nil {
		return Budget{}, err
	}

	return Budget{
		DefaultModel: model.DefaultModel,
		BudgetEditable: BudgetEditable{
			Code:           model.Code,
			Name:           model.Name,
			Note:           model.Note,
			Currency:       model.Currency,
			PeriodStart:    model.PeriodStart,
			PeriodEnd:      model.PeriodEnd,
			Type:           model.Type,
			Department:     model.Department,
			Project:        model.Project,
			ParentID:       model.ParentID,
			Revenue:        model.Revenue,
			Cost:           model.Cost,
			Expense:        model.Expense,
			ApprovalLevels: model.ApprovalLevels,
			CreatedBy:      model.CreatedBy,
		},
		FiscalYear: model.FiscalYear,
		Status:     model.Status,
		Total:      model.Total,
		Allocated:  allocated,
		Links: BudgetLinks{
			Self:          fmt.Sprintf("%s/v1/budgets/%s", url, model.ID),
			Children:      fmt.Sprintf("%s/v1/budgets/%s/children", url, model.ID),
			Allocations:   fmt.Sprintf("%s/v1/allocations?budget=%s", url, model.ID),
			Alerts:        fmt.Sprintf("%s/v1/alerts?budget=%s", url, model.ID),
			ApprovalSteps: fmt.Sprintf("%s/v1/approval-steps?budget=%s", url, model.ID),
		},
	}, nil
}

type BudgetListResponse struct {
	Data       []Budget    `json:"data"`                                                          // List of budgets
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type BudgetCreateResponse struct {
	Data  []BudgetResponse `json:"data"`                                                          // List of the created budgets or their respective error
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (b *BudgetCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	b.Data = append(b.Data, BudgetResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`                                                          // Data for the budget
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BudgetQueryFilter struct {
	Code       string       `form:"code"`                       // By code
	Name       string       `form:"name" filterField:"false"`   // By name
	Note       string       `form:"note" filterField:"false"`   // By note
	Currency   string       `form:"currency"`                   // By currency
	FiscalYear int          `form:"fiscalYear"`                 // By fiscal year
	Type       string       `form:"type"`                       // By period granularity
	Department string       `form:"department"`                 // By owning department
	Project    string       `form:"project"`                    // By owning project
	Status     string       `form:"status"`                     // By lifecycle status
	ParentID   ll_uuid.UUID `form:"parent"`                     // By ID of the parent budget
	Search     string       `form:"search" filterField:"false"` // By string in name or note
	Offset     uint         `form:"offset" filterField:"false"` // The offset of the first budget returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`  // Maximum number of budgets to return. Defaults to 50.
}

func (f BudgetQueryFilter) model() models.Budget {
	var parentID *uuid.UUID
	if f.ParentID.UUID != uuid.Nil {
		parentID = &f.ParentID.UUID
	}

	return models.Budget{
		Code:       f.Code,
		Currency:   f.Currency,
		FiscalYear: f.FiscalYear,
		Type:       models.BudgetType(f.Type),
		Department: f.Department,
		Project:    f.Project,
		Status:     models.BudgetStatus(f.Status),
		ParentID:   parentID,
	}
}
