package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	ll_uuid "github.com/ledgerline/backend/internal/uuid"
)

// ApprovalDecision is the body for recording an approval decision.
type ApprovalDecision struct {
	Level    uint8  `json:"level" binding:"required" example:"1"`          // Level of the step the decision is for
	Action   string `json:"action" binding:"required" example:"approve"`   // One of approve, reject, return
	Approver string `json:"approver" binding:"required" example:"cfo"`     // Identity recording the decision
	Comment  string `json:"comment" example:"Within the headcount plan"`   // Optional comment
}

type ApprovalStepLinks struct {
	Self   string `json:"self" example:"https://example.com/api/v1/approval-steps/d1798c6c-a7b1-4e7f-aefe-d9d041bbbafe"` // The approval step itself
	Budget string `json:"budget" example:"https://example.com/api/v1/budgets/550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"`      // The budget the step belongs to
}

type ApprovalStep struct {
	models.DefaultModel
	BudgetID  uuid.UUID             `json:"budgetId" example:"550dc0c2-0c2f-4b34-bd1a-87c1f3b1d0ab"` // ID of the budget the step belongs to
	Cycle     uint                  `json:"cycle" example:"1"`                                       // Submission cycle the step belongs to
	Level     uint8                 `json:"level" example:"1"`                                       // Ordinal of the step within the chain
	Approver  string                `json:"approver" example:"cfo"`                                  // Identity that decided the step
	Status    models.ApprovalStatus `json:"status" example:"pending"`                                // Decision state
	Comment   string                `json:"comment" example:""`                                      // Comment given with the decision
	DecidedAt *time.Time            `json:"decidedAt" example:"2026-02-01T09:58:00Z"`                // Time the decision was recorded
	Links     ApprovalStepLinks     `json:"links"`
}

func newApprovalStep(c *gin.Context, model models.ApprovalStep) ApprovalStep {
	url := c.GetString(string(models.DBContextURL))

	return ApprovalStep{
		DefaultModel: model.DefaultModel,
		BudgetID:     model.BudgetID,
		Cycle:        model.Cycle,
		Level:        model.Level,
		Approver:     model.Approver,
		Status:       model.Status,
		Comment:      model.Comment,
		DecidedAt:    model.DecidedAt,
		Links: ApprovalStepLinks{
			Self:   fmt.Sprintf("%s/v1/approval-steps/%s", url, model.ID),
			Budget: fmt.Sprintf("%s/v1/budgets/%s", url, model.BudgetID),
		},
	}
}

type ApprovalStepListResponse struct {
	Data       []ApprovalStep `json:"data"`                                                          // List of approval steps
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination    `json:"pagination"`                                                    // Pagination information
}

type ApprovalStepResponse struct {
	Data  *ApprovalStep `json:"data"`                                                          // Data for the approval step
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ApprovalStepQueryFilter struct {
	BudgetID ll_uuid.UUID `form:"budget"`                     // By ID of the budget
	Cycle    uint         `form:"cycle"`                      // By submission cycle
	Level    uint8        `form:"level"`                      // By level within the chain
	Status   string       `form:"status"`                     // By decision state
	Approver string       `form:"approver"`                   // By deciding identity
	Offset   uint         `form:"offset" filterField:"false"` // The offset of the first approval step returned. Defaults to 0.
	Limit    int          `form:"limit" filterField:"false"`  // Maximum number of approval steps to return. Defaults to 50.
}

func (f ApprovalStepQueryFilter) model() models.ApprovalStep {
	return models.ApprovalStep{
		BudgetID: f.BudgetID.UUID,
		Cycle:    f.Cycle,
		Level:    f.Level,
		Status:   models.ApprovalStatus(f.Status),
		Approver: f.Approver,
	}
}
