package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/backend/internal/engine"
	"github.com/ledgerline/backend/internal/httputil"
	"github.com/ledgerline/backend/internal/models"
)

// core is the budget engine shared by all handlers that post to the
// ledger or drive the approval workflow. It is set during route
// registration.
var core *engine.Engine

// RegisterRootRoutes registers the routes on the v1 root with the
// RouterGroup that is passed.
func RegisterRootRoutes(r *gin.RouterGroup, e *engine.Engine) {
	core = e

	r.GET("", Get)
	r.DELETE("", Cleanup)
	r.OPTIONS("", Options)
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Budgets           string `json:"budgets" example:"https://example.com/api/v1/budgets"`                      // URL of the budget collection endpoint
	Allocations       string `json:"allocations" example:"https://example.com/api/v1/allocations"`              // URL of the allocation collection endpoint
	ConsumptionEvents string `json:"consumptionEvents" example:"https://example.com/api/v1/consumption-events"` // URL of the consumption ledger endpoint
	Alerts            string `json:"alerts" example:"https://example.com/api/v1/alerts"`                        // URL of the alert collection endpoint
	ApprovalSteps     string `json:"approvalSteps" example:"https://example.com/api/v1/approval-steps"`         // URL of the approval audit trail endpoint
	Import            string `json:"import" example:"https://example.com/api/v1/import"`                        // URL of the import list endpoint
	Export            string `json:"export" example:"https://example.com/api/v1/export"`                        // URL of the export endpoint
	Reconcile         string `json:"reconcile" example:"https://example.com/api/v1/reconcile"`                  // URL of the reconciliation endpoint
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Budgets:           url + "/v1/budgets",
			Allocations:       url + "/v1/allocations",
			ConsumptionEvents: url + "/v1/consumption-events",
			Alerts:            url + "/v1/alerts",
			ApprovalSteps:     url + "/v1/approval-steps",
			Import:            url + "/v1/import",
			Export:            url + "/v1/export",
			Reconcile:         url + "/v1/reconcile",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// @Summary		Delete everything
// @Description	Permanently deletes all resources
// @Tags			v1
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
// @Router			/v1 [delete]
func Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errCleanupConfirmation.Error(),
		})
		return
	}

	// Foreign keys are checked during cleanup,
	// add new models *before* any of the models
	// they reference
	resources := []any{
		models.Alert{},
		models.ApprovalStep{},
		models.Allocation{},
		models.Budget{},
	}

	// Use a transaction so that we can roll back if errors happen
	tx := models.DB.Begin()

	// The ledger blocks deletes through the model hooks to keep it
	// append-only, the cleanup works on the table directly
	err = tx.Exec("DELETE FROM consumption_events").Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpError{
			Error: err.Error(),
		})
		tx.Rollback()
		return
	}

	for _, model := range resources {
		err := tx.Unscoped().Where("true").Delete(&model).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpError{
				Error: err.Error(),
			})
			tx.Rollback()
			return
		}
	}

	tx.Commit()
	c.JSON(http.StatusNoContent, nil)
}
