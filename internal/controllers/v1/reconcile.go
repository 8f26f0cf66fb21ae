package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/backend/internal/engine"
	"github.com/ledgerline/backend/internal/httputil"
	ll_uuid "github.com/ledgerline/backend/internal/uuid"
)

// RegisterReconcileRoutes registers the routes for the reconciliation
// sweep with the RouterGroup that is passed.
func RegisterReconcileRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsReconcile)
		r.POST("", Reconcile)
	}
}

type ReconcileQuery struct {
	BudgetID ll_uuid.UUID `form:"budgetId" binding:"required"` // ID of the budget to reconcile
}

// ReconcileResult reports what the sweep changed.
type ReconcileResult struct {
	Allocations    int `json:"allocations" example:"12"`   // Number of allocations checked
	TotalsRepaired int `json:"totalsRepaired" example:"1"` // Number of cached running totals that differed from the ledger
	AlertsEmitted  int `json:"alertsEmitted" example:"1"`  // Number of alerts emitted for missed crossings
	AlertsResolved int `json:"alertsResolved" example:"0"` // Number of alerts auto-resolved, 0 unless the policy is enabled
}

type ReconcileResponse struct {
	Data  *ReconcileResult `json:"data"`                                                          // The result of the sweep
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func newReconcileResult(result engine.ReconcileResult) ReconcileResult {
	return ReconcileResult{
		Allocations:    result.Allocations,
		TotalsRepaired: result.TotalsRepaired,
		AlertsEmitted:  result.AlertsEmitted,
		AlertsResolved: result.AlertsResolved,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Reconcile
// @Success		204
// @Router			/v1/reconcile [options]
func OptionsReconcile(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Reconcile budget
// @Description	Re-derives the cached running totals of all allocations of a budget from the consumption ledger and re-runs the threshold evaluation. Safe to run repeatedly.
// @Tags			Reconcile
// @Produce		json
// @Success		200			{object}	ReconcileResponse
// @Failure		400			{object}	ReconcileResponse
// @Failure		404			{object}	ReconcileResponse
// @Failure		500			{object}	ReconcileResponse
// @Failure		503			{object}	ReconcileResponse
// @Param			budgetId	query		ReconcileQuery	false	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/reconcile [post]
func Reconcile(c *gin.Context) {
	var query ReconcileQuery
	err := c.BindQuery(&query)
	if err != nil || query.BudgetID == ll_uuid.Nil {
		s := errReconcileBudgetSet.Error()
		c.JSON(http.StatusBadRequest, ReconcileResponse{
			Error: &s,
		})
		return
	}

	result, err := core.Reconcile(query.BudgetID.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReconcileResponse{
			Error: &s,
		})
		return
	}

	data := newReconcileResult(result)
	c.JSON(http.StatusOK, ReconcileResponse{Data: &data})
}
