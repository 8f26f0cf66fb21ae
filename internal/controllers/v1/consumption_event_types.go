package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/engine"
	"github.com/ledgerline/backend/internal/models"
	"github.com/ledgerline/backend/internal/types"
	ll_uuid "github.com/ledgerline/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// ConsumptionEventEditable represents all user configurable parameters
type ConsumptionEventEditable struct {
	AllocationID  uuid.UUID            `json:"allocationId" example:"10be20c2-c2d6-455b-b737-8b283e1f6e52"` // ID of the allocation the event belongs to
	Date          types.Date           `json:"date" example:"2026-03-14"`                                   // Day the spend occurred. Defaults to today
	Amount        decimal.Decimal      `json:"amount" example:"12000000"`                                   // Amount consumed. Negative for reversals
	ReferenceType models.ReferenceType `json:"referenceType" example:"invoice"`                             // Kind of source document
	ReferenceID   string               `json:"referenceId" example:"INV-2026-0042"`                         // ID of the source document
	Description   string               `json:"description" example:"Server hardware Q1" default:""`         // Description of the spend
}

func (editable ConsumptionEventEditable) model() models.ConsumptionEvent {
	return models.ConsumptionEvent{
		AllocationID:  editable.AllocationID,
		Date:          editable.Date,
		Amount:        editable.Amount,
		ReferenceType: editable.ReferenceType,
		ReferenceID:   editable.ReferenceID,
		Description:   editable.Description,
	}
}

type ConsumptionEventLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/consumption-events/4cca7f25-80b3-4e48-9ee5-8247d2b24862"`   // The consumption event itself
	Allocation string `json:"allocation" example:"https://example.com/api/v1/allocations/10be20c2-c2d6-455b-b737-8b283e1f6e52"`    // The allocation the event belongs to
}

type ConsumptionEvent struct {
	models.DefaultModel
	ConsumptionEventEditable
	Links ConsumptionEventLinks `json:"links"`
}

func newConsumptionEvent(c *gin.Context, model models.ConsumptionEvent) ConsumptionEvent {
	url := c.GetString(string(models.DBContextURL))

	return ConsumptionEvent{
		DefaultModel: model.DefaultModel,
		ConsumptionEventEditable: ConsumptionEventEditable{
			AllocationID:  model.AllocationID,
			Date:          model.Date,
			Amount:        model.Amount,
			ReferenceType: model.ReferenceType,
			ReferenceID:   model.ReferenceID,
			Description:   model.Description,
		},
		Links: ConsumptionEventLinks{
			Self:       fmt.Sprintf("%s/v1/consumption-events/%s", url, model.ID),
			Allocation: fmt.Sprintf("%s/v1/allocations/%s", url, model.AllocationID),
		},
	}
}

// Posting is the result of posting a single consumption event. Alongside
// the recorded event it carries the new state of the allocation and the
// alerts the posting triggered.
type Posting struct {
	Event    ConsumptionEvent `json:"event"`                  // The recorded consumption event
	Consumed decimal.Decimal  `json:"consumed" example:"12000000"` // Running total after the posting
	Ratio    decimal.Decimal  `json:"ratio" example:"0.8"`    // Consumption ratio after the posting
	Alerts   []Alert          `json:"alerts"`                 // Alerts triggered by this posting
}

func newPosting(c *gin.Context, result engine.PostingResult) Posting {
	alerts := make([]Alert, 0, len(result.Alerts))
	for _, alert := range result.Alerts {
		alerts = append(alerts, newAlert(c, alert))
	}

	return Posting{
		Event:    newConsumptionEvent(c, result.Event),
		Consumed: result.Consumed,
		Ratio:    result.Ratio,
		Alerts:   alerts,
	}
}

type ConsumptionEventListResponse struct {
	Data       []ConsumptionEvent `json:"data"`                                                          // List of consumption events
	Error      *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination        `json:"pagination"`                                                    // Pagination information
}

type PostingCreateResponse struct {
	Data  []PostingResponse `json:"data"`                                                          // List of the recorded postings or their respective error
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (p *PostingCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	p.Data = append(p.Data, PostingResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type PostingResponse struct {
	Data  *Posting `json:"data"`                                                          // Data for the posting
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ConsumptionEventResponse struct {
	Data  *ConsumptionEvent `json:"data"`                                                          // Data for the consumption event
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ConsumptionEventQueryFilter struct {
	AllocationID  ll_uuid.UUID `form:"allocation"`                 // By ID of the allocation
	ReferenceType string       `form:"referenceType"`              // By kind of source document
	ReferenceID   string       `form:"reference"`                  // By ID of the source document
	Offset        uint         `form:"offset" filterField:"false"` // The offset of the first consumption event returned. Defaults to 0.
	Limit         int          `form:"limit" filterField:"false"`  // Maximum number of consumption events to return. Defaults to 50.
}

func (f ConsumptionEventQueryFilter) model() models.ConsumptionEvent {
	return models.ConsumptionEvent{
		AllocationID:  f.AllocationID.UUID,
		ReferenceType: models.ReferenceType(f.ReferenceType),
		ReferenceID:   f.ReferenceID,
	}
}
