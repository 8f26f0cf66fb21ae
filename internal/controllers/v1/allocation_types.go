package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	ll_uuid "github.com/ledgerline/backend/internal/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationEditable represents all user configurable parameters
type AllocationEditable struct {
	BudgetID    uuid.UUID               `json:"budgetId" example:"550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"` // ID of the budget the allocation belongs to
	AccountCode string                  `json:"accountCode" example:"7001"`                              // Account code the allocation is assigned to. May contain * as wildcard for account groups
	Method      models.AllocationMethod `json:"method" example:"fixed" default:"fixed"`                  // How the allocated amount is derived
	Amount      decimal.Decimal         `json:"amount" example:"15000000"`                               // Allocated amount for the fixed and historical methods
	Percentage  decimal.Decimal         `json:"percentage" example:"25"`                                 // Percentage of the budget total for the percentage method
}

func (editable AllocationEditable) model() models.Allocation {
	return models.Allocation{
		BudgetID:    editable.BudgetID,
		AccountCode: editable.AccountCode,
		Method:      editable.Method,
		Amount:      editable.Amount,
		Percentage:  editable.Percentage,
	}
}

type AllocationLinks struct {
	Self   string `json:"self" example:"https://example.com/api/v1/allocations/10be20c2-c2d6-455b-b737-8b283e1f6e52"`        // The allocation itself
	Budget string `json:"budget" example:"https://example.com/api/v1/budgets/550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`          // The budget the allocation belongs to
	Path   string `json:"path" example:"https://example.com/api/v1/allocations/10be20c2-c2d6-455b-b737-8b283e1f6e52/path"`   // Budget chain from the root down to the allocation
	Ratio  string `json:"ratio" example:"https://example.com/api/v1/allocations/10be20c2-c2d6-455b-b737-8b283e1f6e52/ratio"` // Consumption ratio for the allocation
	Events string `json:"events" example:"https://example.com/api/v1/consumption-events?allocation=10be20c2-c2d6-455b-b737-8b283e1f6e52"` // Ledger of consumption events
}

type Allocation struct {
	models.DefaultModel
	AllocationEditable
	Links AllocationLinks `json:"links"`

	// These fields are computed
	Allocated  decimal.Decimal `json:"allocated" example:"15000000"` // Effective allocated amount
	Consumed   decimal.Decimal `json:"consumed" example:"12000000"`  // Running total of all consumption events
	Ratio      decimal.Decimal `json:"ratio" example:"0.8"`          // Consumed divided by allocated
	Superseded bool            `json:"superseded" example:"false"`   // True once the allocation has been replaced
}

func newAllocation(c *gin.Context, db *gorm.DB, model models.Allocation) (Allocation, error) {
	url := c.GetString(string(models.DBContextURL))

	var budget models.Budget
	err := db.First(&budget, model.BudgetID).Error
	if err != nil {
		return Allocation{}, err
	}

	return Allocation{
		DefaultModel: model.DefaultModel,
		AllocationEditable: AllocationEditable{
			BudgetID:    model.BudgetID,
			AccountCode: model.AccountCode,
			Method:      model.Method,
			Amount:      model.Amount,
			Percentage:  model.Percentage,
		},
		Allocated:  model.EffectiveAmount(budget),
		Consumed:   model.Consumed,
		Ratio:      model.Ratio(budget),
		Superseded: model.Superseded,
		Links: AllocationLinks{
			Self:   fmt.Sprintf("%s/v1/allocations/%s", url, model.ID),
			Budget: fmt.Sprintf("%s/v1/budgets/%s", url, model.BudgetID),
			Path:   fmt.Sprintf("%s/v1/allocations/%s/path", url, model.ID),
			Ratio:  fmt.Sprintf("%s/v1/allocations/%s/ratio", url, model.ID),
			Events: fmt.Sprintf("%s/v1/consumption-events?allocation=%s", url, model.ID),
		},
	}, nil
}

type AllocationListResponse struct {
	Data       []Allocation `json:"data"`                                                          // List of allocations
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type AllocationCreateResponse struct {
	Data  []AllocationResponse `json:"data"`                                                          // List of the created allocations or their respective error
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (a *AllocationCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	a.Data = append(a.Data, AllocationResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AllocationResponse struct {
	Data  *Allocation `json:"data"`                                                          // Data for the allocation
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// AllocationRatio is the consumption ratio of a single allocation.
type AllocationRatio struct {
	Allocated decimal.Decimal `json:"allocated" example:"15000000"` // Effective allocated amount
	Consumed  decimal.Decimal `json:"consumed" example:"12000000"`  // Running total of all consumption events
	Ratio     decimal.Decimal `json:"ratio" example:"0.8"`          // Consumed divided by allocated
}

type AllocationRatioResponse struct {
	Data  *AllocationRatio `json:"data"`                                                          // The consumption ratio
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// AllocationPathResponse contains the budget chain from the root budget
// down to the budget owning the allocation.
type AllocationPathResponse struct {
	Data  []Budget `json:"data"`                                                          // Budgets from the root down to the owning budget
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationQueryFilter struct {
	BudgetID    ll_uuid.UUID `form:"budget"`                     // By ID of the budget
	AccountCode string       `form:"account"`                    // By account code
	Method      string       `form:"method"`                     // By derivation method
	Superseded  bool         `form:"superseded"`                 // Is the allocation superseded?
	Offset      uint         `form:"offset" filterField:"false"` // The offset of the first allocation returned. Defaults to 0.
	Limit       int          `form:"limit" filterField:"false"`  // Maximum number of allocations to return. Defaults to 50.
}

func (f AllocationQueryFilter) model() models.Allocation {
	return models.Allocation{
		BudgetID:    f.BudgetID.UUID,
		AccountCode: f.AccountCode,
		Method:      models.AllocationMethod(f.Method),
		Superseded:  f.Superseded,
	}
}
