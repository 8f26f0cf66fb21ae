package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/backend/internal/httputil"
	"github.com/ledgerline/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterAlertRoutes registers the routes for alerts with
// the RouterGroup that is passed.
//
// Alerts are raised by the engine when thresholds are crossed, the API
// only exposes reading them and updating their handling status.
func RegisterAlertRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsAlertList)
		r.GET("", GetAlerts)
	}

	// Alert with ID
	{
		r.OPTIONS("/:id", OptionsAlertDetail)
		r.GET("/:id", GetAlert)
		r.PATCH("/:id", UpdateAlert)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Alerts
// @Success		204
// @Router			/v1/alerts [options]
func OptionsAlertList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Alerts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/alerts/{id} [options]
func OptionsAlertDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Alert{}, httputil.OptionsGetPatch)
}

// @Summary		List alerts
// @Description	Returns a list of alerts
// @Tags			Alerts
// @Produce		json
// @Success		200	{object}	AlertListResponse
// @Failure		500	{object}	AlertListResponse
// @Router			/v1/alerts [get]
// @Param			budget		query	string	false	"Filter by budget ID"
// @Param			allocation	query	string	false	"Filter by allocation ID"
// @Param			type		query	string	false	"Filter by crossed threshold"
// @Param			status		query	string	false	"Filter by handling status"
// @Param			offset		query	uint	false	"The offset of the first alert returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of alerts to return. Defaults to 50."
func GetAlerts(c *gin.Context) {
	var filter AlertQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we're filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	var alerts []models.Alert

	// Sort the most recent alerts first
	q := models.DB.
		Order("created_at DESC").
		Where(filter.model(), queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to all alerts and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	err := q.Find(&alerts).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AlertListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AlertListResponse{
			Error: &e,
		})
		return
	}

	apiResources := make([]Alert, 0)
	for _, alert := range alerts {
		apiResources = append(apiResources, newAlert(c, alert))
	}

	c.JSON(http.StatusOK, AlertListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get alert
// @Description	Returns a specific alert
// @Tags			Alerts
// @Produce		json
// @Success		200	{object}	AlertResponse
// @Failure		400	{object}	AlertResponse
// @Failure		404	{object}	AlertResponse
// @Failure		500	{object}	AlertResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/alerts/{id} [get]
func GetAlert(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AlertResponse{
			Error: &s,
		})
		return
	}

	var alert models.Alert
	err = models.DB.First(&alert, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AlertResponse{
			Error: &s,
		})
		return
	}

	apiResource := newAlert(c, alert)
	c.JSON(http.StatusOK, AlertResponse{Data: &apiResource})
}

// @Summary		Update alert
// @Description	Updates the handling status of an alert. Active alerts can be acknowledged or resolved, acknowledged alerts can be resolved. Resolved is final.
// @Tags			Alerts
// @Accept			json
// @Produce		json
// @Success		200		{object}	AlertResponse
// @Failure		400		{object}	AlertResponse
// @Failure		404		{object}	AlertResponse
// @Failure		500		{object}	AlertResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			alert	body		AlertEditable	true	"Alert"
// @Router			/v1/alerts/{id} [patch]
func UpdateAlert(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AlertResponse{
			Error: &s,
		})
		return
	}

	var alert models.Alert
	err = models.DB.First(&alert, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AlertResponse{
			Error: &s,
		})
		return
	}

	var data AlertEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AlertResponse{
			Error: &s,
		})
		return
	}

	err = alert.Transition(models.DB, data.Status)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AlertResponse{
			Error: &s,
		})
		return
	}

	apiResource := newAlert(c, alert)
	c.JSON(http.StatusOK, AlertResponse{Data: &apiResource})
}
