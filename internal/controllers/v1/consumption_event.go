package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/backend/internal/httputil"
	"github.com/ledgerline/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterConsumptionEventRoutes registers the routes for the consumption
// ledger with the RouterGroup that is passed.
//
// The ledger is append-only, there are no update or delete routes.
func RegisterConsumptionEventRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsConsumptionEventList)
		r.GET("", GetConsumptionEvents)
		r.POST("", CreateConsumptionEvents)
	}

	// Consumption event with ID
	{
		r.OPTIONS("/:id", OptionsConsumptionEventDetail)
		r.GET("/:id", GetConsumptionEvent)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			ConsumptionEvents
// @Success		204
// @Router			/v1/consumption-events [options]
func OptionsConsumptionEventList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			ConsumptionEvents
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/consumption-events/{id} [options]
func OptionsConsumptionEventDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.ConsumptionEvent{}, httputil.OptionsGet)
}

// @Summary		Post consumption events
// @Description	Appends consumption events to the ledger. Each event updates the running total of its allocation and evaluates the alert thresholds in the same transaction.
// @Tags			ConsumptionEvents
// @Accept			json
// @Produce		json
// @Success		201		{object}	PostingCreateResponse
// @Failure		400		{object}	PostingCreateResponse
// @Failure		404		{object}	PostingCreateResponse
// @Failure		500		{object}	PostingCreateResponse
// @Failure		503		{object}	PostingCreateResponse
// @Param			events	body		[]ConsumptionEventEditable	true	"Consumption events"
// @Router			/v1/consumption-events [post]
func CreateConsumptionEvents(c *gin.Context) {
	var events []ConsumptionEventEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &events)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PostingCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := PostingCreateResponse{}

	for _, editable := range events {
		result, err := core.PostConsumption(editable.model())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newPosting(c, result)
		r.Data = append(r.Data, PostingResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List consumption events
// @Description	Returns the consumption ledger
// @Tags			ConsumptionEvents
// @Produce		json
// @Success		200	{object}	ConsumptionEventListResponse
// @Failure		500	{object}	ConsumptionEventListResponse
// @Router			/v1/consumption-events [get]
// @Param			allocation		query	string	false	"Filter by allocation ID"
// @Param			referenceType	query	string	false	"Filter by kind of source document"
// @Param			reference		query	string	false	"Filter by ID of the source document"
// @Param			offset			query	uint	false	"The offset of the first consumption event returned. Defaults to 0."
// @Param			limit			query	int		false	"Maximum number of consumption events to return. Defaults to 50."
func GetConsumptionEvents(c *gin.Context) {
	var filter ConsumptionEventQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we're filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	var events []models.ConsumptionEvent

	// Sort by date so the ledger reads chronologically
	q := models.DB.
		Order("date ASC, created_at ASC").
		Where(filter.model(), queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to all consumption events and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	err := q.Find(&events).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ConsumptionEventListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ConsumptionEventListResponse{
			Error: &e,
		})
		return
	}

	apiResources := make([]ConsumptionEvent, 0)
	for _, event := range events {
		apiResources = append(apiResources, newConsumptionEvent(c, event))
	}

	c.JSON(http.StatusOK, ConsumptionEventListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get consumption event
// @Description	Returns a specific consumption event
// @Tags			ConsumptionEvents
// @Produce		json
// @Success		200	{object}	ConsumptionEventResponse
// @Failure		400	{object}	ConsumptionEventResponse
// @Failure		404	{object}	ConsumptionEventResponse
// @Failure		500	{object}	ConsumptionEventResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/consumption-events/{id} [get]
func GetConsumptionEvent(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ConsumptionEventResponse{
			Error: &s,
		})
		return
	}

	var event models.ConsumptionEvent
	err = models.DB.First(&event, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ConsumptionEventResponse{
			Error: &s,
		})
		return
	}

	data := newConsumptionEvent(c, event)
	c.JSON(http.StatusOK, ConsumptionEventResponse{Data: &data})
}
