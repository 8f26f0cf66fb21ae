package v1

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/backend/internal/httputil"
	"github.com/ledgerline/backend/internal/importer"
	"github.com/ledgerline/backend/internal/importer/parser/ledgercsv"
	"github.com/ledgerline/backend/internal/models"
	ll_uuid "github.com/ledgerline/backend/internal/uuid"
)

type ImportQuery struct {
	BudgetID ll_uuid.UUID `form:"budgetId" binding:"required"` // ID of the budget to import the consumption events for
}

// EventPreview is a single parsed ledger line with its matching state.
type EventPreview struct {
	Event       ConsumptionEvent `json:"event"`               // The consumption event to be created
	AccountCode string           `json:"accountCode" example:"7001"` // Account code from the source file
	Matched     bool             `json:"matched" example:"true"`     // True once an allocation has been resolved
}

func newEventPreview(c *gin.Context, preview importer.EventPreview) EventPreview {
	return EventPreview{
		Event:       newConsumptionEvent(c, preview.Event),
		AccountCode: preview.AccountCode,
		Matched:     preview.Matched,
	}
}

type ImportPreviewList struct {
	Data  []EventPreview `json:"data"`                                                          // List of event previews
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, errNoFilePost
	}

	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(formFile.Filename, suffix) {
		return nil, fmt.Errorf("%w: %s", errWrongFileSuffix, suffix)
	}

	f, err := formFile.Open()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// RegisterImportRoutes registers the routes for imports.
func RegisterImportRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsImport)
		r.GET("", GetImport)

		r.OPTIONS("/ledger-csv", OptionsImportLedgerCSV)
		r.POST("/ledger-csv", ImportLedgerCSV)

		r.OPTIONS("/ledger-csv-preview", OptionsImportLedgerCSVPreview)
		r.POST("/ledger-csv-preview", ImportLedgerCSVPreview)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs.
// @Tags			Import
// @Success		204
// @Router			/v1/import [options]
func OptionsImport(c *gin.Context) {
	httputil.OptionsGet(c)
}

type ImportResponse struct {
	Links ImportLinks `json:"links"` // Links for the import endpoints
}

type ImportLinks struct {
	LedgerCSV        string `json:"ledgerCsv" example:"https://example.com/api/v1/import/ledger-csv"`                // URL of the ledger CSV import endpoint
	LedgerCSVPreview string `json:"ledgerCsvPreview" example:"https://example.com/api/v1/import/ledger-csv-preview"` // URL of the ledger CSV preview endpoint
}

// @Summary		Import API overview
// @Description	Returns general information about the import endpoints
// @Tags			Import
// @Success		200	{object}	ImportResponse
// @Router			/v1/import [get]
func GetImport(c *gin.Context) {
	c.JSON(http.StatusOK, ImportResponse{
		Links: ImportLinks{
			LedgerCSV:        c.GetString(string(models.DBContextURL)) + "/v1/import/ledger-csv",
			LedgerCSVPreview: c.GetString(string(models.DBContextURL)) + "/v1/import/ledger-csv-preview",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/ledger-csv [options]
func OptionsImportLedgerCSV(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/ledger-csv-preview [options]
func OptionsImportLedgerCSVPreview(c *gin.Context) {
	httputil.OptionsPost(c)
}

// parsePreviews parses the uploaded CSV file and matches every line to an
// allocation of the budget.
func parsePreviews(c *gin.Context) ([]importer.EventPreview, error) {
	var query ImportQuery
	err := c.BindQuery(&query)
	if err != nil {
		return nil, fmt.Errorf("budgetId: %w", err)
	}

	if query.BudgetID == ll_uuid.Nil {
		return nil, errBudgetIDParameter
	}

	f, err := getUploadedFile(c, ".csv")
	if err != nil {
		return nil, err
	}

	// Verify that the budget exists
	var budget models.Budget
	err = models.DB.First(&budget, query.BudgetID).Error
	if err != nil {
		return nil, err
	}

	previews, err := ledgercsv.Parse(f, budget)
	if err != nil {
		return nil, err
	}

	// Load the non-superseded allocations of the budget. Exact account
	// codes match before wildcard account groups.
	var allocations []models.Allocation
	err = models.DB.
		Where(models.Allocation{BudgetID: budget.ID}, "BudgetID", "Superseded").
		Order("account_code ASC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	return importer.MatchAllocations(allocations, previews), nil
}

// @Summary		Ledger import preview
// @Description	Returns a preview of the consumption events to be posted after parsing a ledger CSV file. No events are recorded.
// @Tags			Import
// @Accept			multipart/form-data
// @Produce		json
// @Success		200			{object}	ImportPreviewList
// @Failure		400			{object}	ImportPreviewList
// @Failure		404			{object}	ImportPreviewList
// @Failure		500			{object}	ImportPreviewList
// @Param			file		formData	file		true	"File to import"
// @Param			budgetId	query		ImportQuery	false	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/import/ledger-csv-preview [post]
func ImportLedgerCSVPreview(c *gin.Context) {
	previews, err := parsePreviews(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportPreviewList{
			Error: &s,
		})
		return
	}

	data := make([]EventPreview, 0, len(previews))
	for _, preview := range previews {
		data = append(data, newEventPreview(c, preview))
	}

	c.JSON(http.StatusOK, ImportPreviewList{Data: data})
}

// @Summary		Ledger import
// @Description	Parses a ledger CSV file and posts a consumption event for every line. All lines must match an allocation, otherwise nothing is posted.
// @Tags			Import
// @Accept			multipart/form-data
// @Produce		json
// @Success		201			{object}	PostingCreateResponse
// @Failure		400			{object}	PostingCreateResponse
// @Failure		404			{object}	PostingCreateResponse
// @Failure		500			{object}	PostingCreateResponse
// @Failure		503			{object}	PostingCreateResponse
// @Param			file		formData	file		true	"File to import"
// @Param			budgetId	query		ImportQuery	false	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/import/ledger-csv [post]
func ImportLedgerCSV(c *gin.Context) {
	previews, err := parsePreviews(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PostingCreateResponse{
			Error: &s,
		})
		return
	}

	// Refuse the whole file if any line has no matching allocation so
	// that a partial import cannot slip through unnoticed
	for _, preview := range previews {
		if !preview.Matched {
			s := fmt.Errorf("%w: %s", errUnmatchedAccount, preview.AccountCode).Error()
			c.JSON(http.StatusBadRequest, PostingCreateResponse{
				Error: &s,
			})
			return
		}
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := PostingCreateResponse{}

	for _, preview := range previews {
		result, err := core.PostConsumption(preview.Event)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newPosting(c, result)
		r.Data = append(r.Data, PostingResponse{Data: &data})
	}

	c.JSON(status, r)
}
