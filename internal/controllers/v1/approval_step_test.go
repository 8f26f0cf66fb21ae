package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/ledgerline/backend/internal/controllers/v1"
	"github.com/ledgerline/backend/internal/models"
	"github.com/ledgerline/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitTestBudget submits a budget and returns the opened approval step.
func submitTestBudget(t *testing.T, b v1.BudgetResponse) v1.ApprovalStep {
	r := test.Request(t, http.MethodPost, b.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(t, &r, http.StatusCreated)

	var step v1.ApprovalStepResponse
	test.DecodeResponse(t, &r, &step)

	return *step.Data
}

// TestApprovalStepsDBClosed verifies that errors are processed correctly
// when the database is closed.
func (suite *TestSuiteStandard) TestApprovalStepsDBClosed() {
	suite.CloseDB()

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/approval-steps", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusInternalServerError)

	var response v1.ApprovalStepListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrGeneral.Error())
}

// TestApprovalStepsOptions verifies that OPTIONS requests are handled
// correctly and that the audit trail is read-only.
func (suite *TestSuiteStandard) TestApprovalStepsOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/approval-steps", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "OPTIONS, GET", r.Header().Get("allow"))

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/approval-steps", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusMethodNotAllowed)

	step := submitTestBudget(suite.T(), createTestBudget(suite.T(), v1.BudgetEditable{}))

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No approval step with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Approval step exists", step.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/approval-steps", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "OPTIONS, GET", r.Header().Get("allow"))
			}
		})
	}
}

// TestApprovalStepsGetSingle verifies that requests for the resource
// endpoints are handled correctly.
func (suite *TestSuiteStandard) TestApprovalStepsGetSingle() {
	step := submitTestBudget(suite.T(), createTestBudget(suite.T(), v1.BudgetEditable{}))

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing approval step", step.ID.String(), http.StatusOK},
		{"ID nil", uuid.Nil.String(), http.StatusNotFound},
		{"No approval step with this ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID (string)", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/approval-steps/%s", tt.id), "")

			var response v1.ApprovalStepResponse
			test.DecodeResponse(t, &r, &response)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestApprovalStepsGetFilter() {
	// Two level chain with the first level decided
	b1 := createTestBudget(suite.T(), v1.BudgetEditable{ApprovalLevels: 2})
	_ = submitTestBudget(suite.T(), b1)

	r := test.Request(suite.T(), http.MethodPost, b1.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    1,
		Action:   "approve",
		Approver: "department-head",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	// Returned and resubmitted budget
	b2 := createTestBudget(suite.T(), v1.BudgetEditable{})
	_ = submitTestBudget(suite.T(), b2)

	r = test.Request(suite.T(), http.MethodPost, b2.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    1,
		Action:   "return",
		Approver: "cfo",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	_ = submitTestBudget(suite.T(), b2)

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Budget 1", fmt.Sprintf("budget=%s", b1.Data.ID), 2},
		{"Budget 2", fmt.Sprintf("budget=%s", b2.Data.ID), 2},
		{"Budget Not Existing", "budget=c9e4ee7a-e702-4f92-b168-11a95b22c7aa", 0},
		{"Cycle 1", "cycle=1", 3},
		{"Cycle 2", "cycle=2", 1},
		{"Level 1", "level=1", 3},
		{"Level 2", "level=2", 1},
		{"Pending", "status=pending", 2},
		{"Approved", "status=approved", 1},
		{"Returned", "status=returned", 1},
		{"Approver", "approver=department-head", 1},
		{"Offset 2", "offset=2", 2},
		{"Limit 2", "limit=2", 2},
		{"Limit 0", "limit=0", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var re v1.ApprovalStepListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/approval-steps?%s", tt.query), "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
			test.DecodeResponse(t, &r, &re)

			assert.Equal(t, tt.len, len(re.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// TestApprovalStepsGetSorted verifies that the audit trail of a budget is
// returned in decision order.
func (suite *TestSuiteStandard) TestApprovalStepsGetSorted() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{ApprovalLevels: 2})
	_ = submitTestBudget(suite.T(), b)

	r := test.Request(suite.T(), http.MethodPost, b.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    1,
		Action:   "approve",
		Approver: "department-head",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/approval-steps?budget=%s", b.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var steps v1.ApprovalStepListResponse
	test.DecodeResponse(suite.T(), &r, &steps)

	require.Len(suite.T(), steps.Data, 2)
	assert.Equal(suite.T(), uint8(1), steps.Data[0].Level)
	assert.Equal(suite.T(), models.ApprovalStatusApproved, steps.Data[0].Status)
	assert.Equal(suite.T(), uint8(2), steps.Data[1].Level)
	assert.Equal(suite.T(), models.ApprovalStatusPending, steps.Data[1].Status)
}
