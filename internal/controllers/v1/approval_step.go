package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/backend/internal/httputil"
	"github.com/ledgerline/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterApprovalStepRoutes registers the routes for the approval audit
// trail with the RouterGroup that is passed.
//
// Approval steps are created by submitting budgets and recording
// decisions, there are no create or update routes for them.
func RegisterApprovalStepRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsApprovalStepList)
		r.GET("", GetApprovalSteps)
	}

	// Approval step with ID
	{
		r.OPTIONS("/:id", OptionsApprovalStepDetail)
		r.GET("/:id", GetApprovalStep)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			ApprovalSteps
// @Success		204
// @Router			/v1/approval-steps [options]
func OptionsApprovalStepList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			ApprovalSteps
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/approval-steps/{id} [options]
func OptionsApprovalStepDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.ApprovalStep{}, httputil.OptionsGet)
}

// @Summary		List approval steps
// @Description	Returns the approval audit trail
// @Tags			ApprovalSteps
// @Produce		json
// @Success		200	{object}	ApprovalStepListResponse
// @Failure		500	{object}	ApprovalStepListResponse
// @Router			/v1/approval-steps [get]
// @Param			budget		query	string	false	"Filter by budget ID"
// @Param			cycle		query	uint	false	"Filter by submission cycle"
// @Param			level		query	uint8	false	"Filter by level"
// @Param			status		query	string	false	"Filter by decision state"
// @Param			approver	query	string	false	"Filter by deciding identity"
// @Param			offset		query	uint	false	"The offset of the first approval step returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of approval steps to return. Defaults to 50."
func GetApprovalSteps(c *gin.Context) {
	var filter ApprovalStepQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we're filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	var steps []models.ApprovalStep

	// Sort by cycle and level so the audit trail reads in decision order
	q := models.DB.
		Order("cycle ASC, level ASC").
		Where(filter.model(), queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to all approval steps and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	err := q.Find(&steps).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApprovalStepListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ApprovalStepListResponse{
			Error: &e,
		})
		return
	}

	apiResources := make([]ApprovalStep, 0)
	for _, step := range steps {
		apiResources = append(apiResources, newApprovalStep(c, step))
	}

	c.JSON(http.StatusOK, ApprovalStepListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get approval step
// @Description	Returns a specific approval step
// @Tags			ApprovalSteps
// @Produce		json
// @Success		200	{object}	ApprovalStepResponse
// @Failure		400	{object}	ApprovalStepResponse
// @Failure		404	{object}	ApprovalStepResponse
// @Failure		500	{object}	ApprovalStepResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/approval-steps/{id} [get]
func GetApprovalStep(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApprovalStepResponse{
			Error: &s,
		})
		return
	}

	var step models.ApprovalStep
	err = models.DB.First(&step, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApprovalStepResponse{
			Error: &s,
		})
		return
	}

	apiResource := newApprovalStep(c, step)
	c.JSON(http.StatusOK, ApprovalStepResponse{Data: &apiResource})
}
