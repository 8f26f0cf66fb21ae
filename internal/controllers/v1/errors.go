package v1

import (
	"errors"
	"net/http"

	"github.com/ledgerline/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for a database or engine error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	// The lock could not be acquired in time, the client should retry
	if errors.Is(err, models.ErrBudgetLocked) {
		return http.StatusServiceUnavailable
	}

	return http.StatusBadRequest
}

// Cleanup errors
var (
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
)

// Import errors
var (
	errNoFilePost         = errors.New("you must send a file to this endpoint")
	errWrongFileSuffix    = errors.New("this endpoint only supports files of the following types")
	errBudgetIDParameter  = errors.New("the budgetId parameter must be set")
	errUnmatchedAccount   = errors.New("no allocation matches the account code")
	errReconcileBudgetSet = errors.New("the budgetId parameter must be set to the budget to reconcile")
)
