package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	ll_uuid "github.com/ledgerline/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// AlertEditable represents all user configurable parameters.
//
// Alerts are raised by the engine, only the handling status can be
// changed by users.
type AlertEditable struct {
	Status models.AlertStatus `json:"status" example:"acknowledged"` // Handling status
}

type AlertLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/alerts/d06cdbbd-4a47-4e37-9836-0b7db133d8ab"`        // The alert itself
	Budget     string `json:"budget" example:"https://example.com/api/v1/budgets/550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`     // The budget the alert belongs to
	Allocation string `json:"allocation" example:"https://example.com/api/v1/allocations/10be20c2-c2d6-455b-b737-8b283e1f6e52"` // The allocation the alert was raised for
}

type Alert struct {
	models.DefaultModel
	BudgetID     uuid.UUID          `json:"budgetId" example:"550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`     // ID of the budget the alert belongs to
	AllocationID uuid.UUID          `json:"allocationId" example:"10be20c2-c2d6-455b-b737-8b283e1f6e52"` // ID of the allocation the alert was raised for
	Type         models.AlertType   `json:"type" example:"threshold_80"`                                 // The crossed threshold
	Threshold    decimal.Decimal    `json:"threshold" example:"80"`                                      // Threshold percentage
	Actual       decimal.Decimal    `json:"actual" example:"85"`                                         // Actual percentage at the time of computation
	Status       models.AlertStatus `json:"status" example:"active"`                                     // Handling status
	Links        AlertLinks         `json:"links"`
}

func newAlert(c *gin.Context, model models.Alert) Alert {
	url := c.GetString(string(models.DBContextURL))

	return Alert{
		DefaultModel: model.DefaultModel,
		BudgetID:     model.BudgetID,
		AllocationID: model.AllocationID,
		Type:         model.Type,
		Threshold:    model.Threshold,
		Actual:       model.Actual,
		Status:       model.Status,
		Links: AlertLinks{
			Self:       fmt.Sprintf("%s/v1/alerts/%s", url, model.ID),
			Budget:     fmt.Sprintf("%s/v1/budgets/%s", url, model.BudgetID),
			Allocation: fmt.Sprintf("%s/v1/allocations/%s", url, model.AllocationID),
		},
	}
}

type AlertListResponse struct {
	Data       []Alert     `json:"data"`                                                          // List of alerts
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type AlertResponse struct {
	Data  *Alert  `json:"data"`                                                          // Data for the alert
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AlertQueryFilter struct {
	BudgetID     ll_uuid.UUID `form:"budget"`                     // By ID of the budget
	AllocationID ll_uuid.UUID `form:"allocation"`                 // By ID of the allocation
	Type         string       `form:"type"`                       // By crossed threshold
	Status       string       `form:"status"`                     // By handling status
	Offset       uint         `form:"offset" filterField:"false"` // The offset of the first alert returned. Defaults to 0.
	Limit        int          `form:"limit" filterField:"false"`  // Maximum number of alerts to return. Defaults to 50.
}

func (f AlertQueryFilter) model() models.Alert {
	return models.Alert{
		BudgetID:     f.BudgetID.UUID,
		AllocationID: f.AllocationID.UUID,
		Type:         models.AlertType(f.Type),
		Status:       models.AlertStatus(f.Status),
	}
}
