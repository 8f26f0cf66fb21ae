package v1_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/ledgerline/backend/internal/controllers/v1"
	"github.com/ledgerline/backend/internal/models"
	"github.com/ledgerline/backend/internal/types"
	"github.com/ledgerline/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBudget(t *testing.T, b v1.BudgetEditable, expectedStatus ...int) v1.BudgetResponse {
	if b.Code == "" {
		b.Code = uuid.NewString()
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.BudgetEditable{b}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/budgets", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var budget v1.BudgetCreateResponse
	test.DecodeResponse(t, &r, &budget)

	if r.Code == http.StatusCreated {
		return budget.Data[0]
	}

	return v1.BudgetResponse{}
}

// approveTestBudget walks a budget through its full approval chain so that
// consumption can be posted for its allocations.
func approveTestBudget(t *testing.T, b v1.BudgetResponse) {
	r := test.Request(t, http.MethodPost, b.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(t, &r, http.StatusCreated)

	levels := b.Data.ApprovalLevels
	if levels == 0 {
		levels = 1
	}

	for level := uint8(1); level <= levels; level++ {
		r := test.Request(t, http.MethodPost, b.Data.Links.Self+"/approvals", v1.ApprovalDecision{
			Level:    level,
			Action:   "approve",
			Approver: "cfo",
		})
		test.AssertHTTPStatus(t, &r, http.StatusCreated)
	}
}

// TestBudgetsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestBudgetsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestBudget(t, v1.BudgetEditable{}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/budgets", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.BudgetListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestBudgetsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestBudgetsOptions() {
	tests := []struct {
		name   string
		id     string // path at the budgets endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No budget with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Budget exists", createTestBudget(suite.T(), v1.BudgetEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/budgets", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "OPTIONS, GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

// TestBudgetsGetSingle verifies that requests for the resource endpoints are
// handled correctly.
func (suite *TestSuiteStandard) TestBudgetsGetSingle() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing budget", b.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET ID nil", uuid.Nil.String(), http.StatusNotFound, http.MethodGet},
		{"GET No budget with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (negative number)", "-56", http.StatusBadRequest, http.MethodGet},
		{"GET Invalid ID (positive number)", "23", http.StatusBadRequest, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (negative number)", "-56", http.StatusBadRequest, http.MethodPatch},
		{"PATCH Invalid ID (positive number)", "23", http.StatusBadRequest, http.MethodPatch},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE Invalid ID (negative number)", "-56", http.StatusBadRequest, http.MethodDelete},
		{"DELETE Invalid ID (positive number)", "23", http.StatusBadRequest, http.MethodDelete},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, tt.method, fmt.Sprintf("http://example.com/v1/budgets/%s", tt.id), "")

			var budget v1.BudgetResponse
			test.DecodeResponse(t, &r, &budget)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsCreateFails() {
	// Test budget for code uniqueness
	b := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-IT-001"})

	tests := []struct {
		name     string
		body     any
		status   int                                           // expected HTTP status
		testFunc func(t *testing.T, b v1.BudgetCreateResponse) // tests to perform against the response
	}{
		{
			"Broken Body", `[{ "note": 2 }]`, http.StatusBadRequest,
			func(t *testing.T, b v1.BudgetCreateResponse) {
				assert.Equal(t, "json: cannot unmarshal number into Go struct field BudgetEditable.note of type string", *b.Error)
			},
		},
		{
			"No body", "", http.StatusBadRequest,
			func(t *testing.T, b v1.BudgetCreateResponse) {
				assert.Equal(t, "the request body must not be empty", *b.Error)
			},
		},
		{
			"Duplicate code",
			[]v1.BudgetEditable{{Code: b.Data.Code}},
			http.StatusBadRequest,
			func(t *testing.T, b v1.BudgetCreateResponse) {
				assert.Equal(t, models.ErrBudgetCodeNotUnique.Error(), *b.Data[0].Error)
			},
		},
		{
			"Invalid type",
			[]v1.BudgetEditable{{Code: "FY26-HR-001", Type: "weekly"}},
			http.StatusBadRequest,
			func(t *testing.T, b v1.BudgetCreateResponse) {
				assert.Equal(t, models.ErrBudgetTypeInvalid.Error(), *b.Data[0].Error)
			},
		},
		{
			"Period ends before it starts",
			[]v1.BudgetEditable{{
				Code:        "FY26-HR-002",
				PeriodStart: types.NewDate(2026, 12, 31),
				PeriodEnd:   types.NewDate(2026, 1, 1),
			}},
			http.StatusBadRequest,
			func(t *testing.T, b v1.BudgetCreateResponse) {
				assert.Equal(t, models.ErrBudgetPeriodInvalid.Error(), *b.Data[0].Error)
			},
		},
		{
			"Non-existing parent",
			`[{ "code": "FY26-HR-003", "parentId": "ea85ad1a-3679-4ced-b83b-89566c12ece9" }]`,
			http.StatusNotFound,
			func(t *testing.T, b v1.BudgetCreateResponse) {
				assert.Contains(t, *b.Data[0].Error, models.ErrResourceNotFound.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/budgets", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var b v1.BudgetCreateResponse
			test.DecodeResponse(t, &r, &b)

			if tt.testFunc != nil {
				tt.testFunc(t, b)
			}
		})
	}
}

// TestBudgetsNesting verifies the nesting depth limit for budgets.
func (suite *TestSuiteStandard) TestBudgetsNesting() {
	parent := createTestBudget(suite.T(), v1.BudgetEditable{Code: "ROOT"})

	for i := 2; i <= models.MaxBudgetDepth; i++ {
		id := parent.Data.ID
		parent = createTestBudget(suite.T(), v1.BudgetEditable{
			Code:     fmt.Sprintf("LEVEL-%d", i),
			ParentID: &id,
		})
	}

	id := parent.Data.ID
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budgets", []v1.BudgetEditable{{
		Code:     "TOO-DEEP",
		ParentID: &id,
	}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.BudgetCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), models.ErrBudgetDepthExceeded.Error(), *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestBudgetsGetFilter() {
	b1 := createTestBudget(suite.T(), v1.BudgetEditable{
		Code:        "FY26-IT-001",
		Name:        "IT department 2026",
		Note:        "Includes the laptop refresh",
		Currency:    "EUR",
		PeriodStart: types.NewDate(2026, 1, 1),
		PeriodEnd:   types.NewDate(2026, 12, 31),
		Department:  "IT",
	})

	_ = createTestBudget(suite.T(), v1.BudgetEditable{
		Code:        "FY26-MKT-001",
		Name:        "Marketing 2026",
		Note:        "Product launch heavy year",
		Currency:    "USD",
		PeriodStart: types.NewDate(2026, 1, 1),
		PeriodEnd:   types.NewDate(2026, 12, 31),
		Type:        models.BudgetTypeQuarterly,
		Department:  "MKT",
		Project:     "Launch",
	})

	_ = createTestBudget(suite.T(), v1.BudgetEditable{
		Code:        "FY25-IT-001",
		Name:        "IT department 2025",
		Currency:    "EUR",
		PeriodStart: types.NewDate(2025, 1, 1),
		PeriodEnd:   types.NewDate(2025, 12, 31),
		Department:  "IT",
	})

	parentID := b1.Data.ID
	_ = createTestBudget(suite.T(), v1.BudgetEditable{
		Code:       "FY26-IT-001-OPS",
		Name:       "IT operations 2026",
		Department: "IT-OPS",
		ParentID:   &parentID,
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Code", "code=FY26-IT-001", 1},
		{"Currency EUR", "currency=EUR", 2},
		{"Fiscal year 2026", "fiscalYear=2026", 2},
		{"Fiscal year without budgets", "fiscalYear=2019", 0},
		{"Type annual", "type=annual", 3},
		{"Type quarterly", "type=quarterly", 1},
		{"Department", "department=IT", 2},
		{"Project", "project=Launch", 1},
		{"Status draft", "status=draft", 4},
		{"Status approved", "status=approved", 0},
		{"Parent", fmt.Sprintf("parent=%s", b1.Data.ID), 1},
		{"Parent without children", "parent=c9e4ee7a-e702-4f92-b168-11a95b22c7aa", 0},
		{"Fuzzy name", "name=IT", 3},
		{"Fuzzy note", "note=laptop", 1},
		{"Empty note", "note=", 2},
		{"Search for 'department'", "search=department", 2},
		{"Search for 'LAUNCH'", "search=LAUNCH", 1},
		{"Offset 2", "offset=2", 2},
		{"Offset 0, limit 2", "offset=0&limit=2", 2},
		{"Limit 10", "limit=10", 4},
		{"Limit 0", "limit=0", 0},
		{"Limit -1", "limit=-1", 4},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var re v1.BudgetListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/budgets?%s", tt.query), "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
			test.DecodeResponse(t, &r, &re)

			assert.Equal(t, tt.len, len(re.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// TestBudgetsGetSorted verifies that budgets are sorted by code.
func (suite *TestSuiteStandard) TestBudgetsGetSorted() {
	b1 := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-C"})
	b2 := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-A"})
	b3 := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-B"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/budgets", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var budgets v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &budgets)

	require.Len(suite.T(), budgets.Data, 3, "Budget list has wrong length")

	assert.Equal(suite.T(), b2.Data.Code, budgets.Data[0].Code)
	assert.Equal(suite.T(), b3.Data.Code, budgets.Data[1].Code)
	assert.Equal(suite.T(), b1.Data.Code, budgets.Data[2].Code)
}

func (suite *TestSuiteStandard) TestBudgetsPagination() {
	for i := 0; i < 10; i++ {
		createTestBudget(suite.T(), v1.BudgetEditable{Code: fmt.Sprintf("FY26-%02d", i)})
	}

	tests := []struct {
		name          string
		offset        uint
		limit         int
		expectedCount int
		expectedTotal int64
	}{
		{"All", 0, -1, 10, 10},
		{"First 5", 0, 5, 5, 10},
		{"Last 5", 5, -1, 5, 10},
		{"Offset 3", 3, -1, 7, 10},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets?offset=%d&limit=%d", tt.offset, tt.limit), "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

			var budgets v1.BudgetListResponse
			test.DecodeResponse(t, &r, &budgets)

			assert.Equal(suite.T(), tt.offset, budgets.Pagination.Offset)
			assert.Equal(suite.T(), tt.limit, budgets.Pagination.Limit)
			assert.Equal(suite.T(), tt.expectedCount, budgets.Pagination.Count)
			assert.Equal(suite.T(), tt.expectedTotal, budgets.Pagination.Total)
		})
	}
}

// TestBudgetsGetChildren verifies that the direct children of a budget are
// returned sorted by code.
func (suite *TestSuiteStandard) TestBudgetsGetChildren() {
	parent := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-IT"})
	parentID := parent.Data.ID

	c1 := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-IT-OPS", ParentID: &parentID})
	c2 := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-IT-DEV", ParentID: &parentID})

	tests := []struct {
		name   string
		id     string
		status int
		len    int
	}{
		{"Parent with children", parent.Data.ID.String(), http.StatusOK, 2},
		{"Leaf budget", c1.Data.ID.String(), http.StatusOK, 0},
		{"No budget with this ID", uuid.New().String(), http.StatusNotFound, 0},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets/%s/children", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status != http.StatusOK {
				return
			}

			var children v1.BudgetListResponse
			test.DecodeResponse(t, &r, &children)
			require.Len(t, children.Data, tt.len)

			if tt.len == 2 {
				assert.Equal(t, c2.Data.Code, children.Data[0].Code)
				assert.Equal(t, c1.Data.Code, children.Data[1].Code)
			}
		})
	}
}

// Verify that updating budgets works as desired
func (suite *TestSuiteStandard) TestBudgetsUpdate() {
	budget := createTestBudget(suite.T(), v1.BudgetEditable{Code: "FY26-IT-001", Name: "Name of the budget"})

	tests := []struct {
		name     string                                  // name of the test
		budget   map[string]any                          // the updates to perform. This is not a struct because that would set all fields on the request
		testFunc func(t *testing.T, b v1.BudgetResponse) // tests to perform against the updated budget resource
	}{
		{
			"Name, Note",
			map[string]any{
				"name": "Another name",
				"note": "New note!",
			},
			func(t *testing.T, b v1.BudgetResponse) {
				assert.Equal(t, "New note!", b.Data.Note)
				assert.Equal(t, "Another name", b.Data.Name)
			},
		},
		{
			"Department",
			map[string]any{
				"department": "IT-OPS",
			},
			func(t *testing.T, b v1.BudgetResponse) {
				assert.Equal(t, "IT-OPS", b.Data.Department)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, budget.Data.Links.Self, tt.budget)
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var b v1.BudgetResponse
			test.DecodeResponse(t, &r, &b)

			if tt.testFunc != nil {
				tt.testFunc(t, b)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsUpdateFails() {
	tests := []struct {
		name   string
		id     string
		body   any
		status int // expected response status
	}{
		{"Invalid type", "", `{"name": 2}`, http.StatusBadRequest},
		{"Broken JSON", "", `{ "name": 2" }`, http.StatusBadRequest},
		{"Non-existing budget", uuid.New().String(), `{"name": "N"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var recorder httptest.ResponseRecorder

			if tt.id == "" {
				budget := createTestBudget(suite.T(), v1.BudgetEditable{
					Name: "New budget",
					Note: "Auto-created for test",
				})

				tt.id = budget.Data.ID.String()
			}

			recorder = test.Request(t, http.MethodPatch, fmt.Sprintf("http://example.com/v1/budgets/%s", tt.id), tt.body)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

// TestBudgetsUpdateApproved verifies that approved budgets are immutable.
func (suite *TestSuiteStandard) TestBudgetsUpdateApproved() {
	budget := createTestBudget(suite.T(), v1.BudgetEditable{})
	approveTestBudget(suite.T(), budget)

	r := test.Request(suite.T(), http.MethodPatch, budget.Data.Links.Self, map[string]any{"name": "Another name"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), models.ErrBudgetApprovedImmutable.Error(), *response.Error)
}

// TestBudgetsDelete verifies all cases for budget deletions.
func (suite *TestSuiteStandard) TestBudgetsDelete() {
	tests := []struct {
		name   string
		id     string
		status int // expected response status
	}{
		{"Success", "", http.StatusNoContent},
		{"Non-existing budget", uuid.New().String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var recorder httptest.ResponseRecorder

			if tt.id == "" {
				b := createTestBudget(t, v1.BudgetEditable{})
				tt.id = b.Data.ID.String()
			}

			recorder = test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1/budgets/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

// TestBudgetsSubmit verifies that submitting a budget opens the first
// approval step and moves the budget to pending.
func (suite *TestSuiteStandard) TestBudgetsSubmit() {
	budget := createTestBudget(suite.T(), v1.BudgetEditable{})

	r := test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var step v1.ApprovalStepResponse
	test.DecodeResponse(suite.T(), &r, &step)

	assert.Equal(suite.T(), uint(1), step.Data.Cycle)
	assert.Equal(suite.T(), uint8(1), step.Data.Level)
	assert.Equal(suite.T(), models.ApprovalStatusPending, step.Data.Status)

	r = test.Request(suite.T(), http.MethodGet, budget.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var b v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &b)
	assert.Equal(suite.T(), models.BudgetStatusPending, b.Data.Status)
}

func (suite *TestSuiteStandard) TestBudgetsSubmitFails() {
	pending := createTestBudget(suite.T(), v1.BudgetEditable{})
	r := test.Request(suite.T(), http.MethodPost, pending.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	tests := []struct {
		name   string
		path   string
		status int
		error  string
	}{
		{"Budget not in draft", pending.Data.Links.Self + "/submit", http.StatusBadRequest, models.ErrBudgetNotDraft.Error()},
		{"No budget with this ID", fmt.Sprintf("http://example.com/v1/budgets/%s/submit", uuid.New()), http.StatusNotFound, models.ErrResourceNotFound.Error()},
		{"Not a valid UUID", "http://example.com/v1/budgets/NotParseableAsUUID/submit", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, tt.path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.error != "" {
				var response v1.ApprovalStepResponse
				test.DecodeResponse(t, &r, &response)
				assert.Contains(t, *response.Error, tt.error)
			}
		})
	}
}

// TestBudgetsApprovalChain verifies a two level approval chain including
// the level ordering.
func (suite *TestSuiteStandard) TestBudgetsApprovalChain() {
	budget := createTestBudget(suite.T(), v1.BudgetEditable{ApprovalLevels: 2})

	r := test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	// Level 2 must not decide before level 1
	r = test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    2,
		Action:   "approve",
		Approver: "cfo",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.ApprovalStepResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), models.ErrApprovalOutOfOrder.Error(), *response.Error)

	r = test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    1,
		Action:   "approve",
		Approver: "department-head",
		Comment:  "Within the headcount plan",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var step v1.ApprovalStepResponse
	test.DecodeResponse(suite.T(), &r, &step)
	assert.Equal(suite.T(), models.ApprovalStatusApproved, step.Data.Status)
	assert.Equal(suite.T(), "department-head", step.Data.Approver)
	assert.NotNil(suite.T(), step.Data.DecidedAt)

	// The budget stays pending until the last level has approved
	r = test.Request(suite.T(), http.MethodGet, budget.Data.Links.Self, "")
	var b v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &b)
	assert.Equal(suite.T(), models.BudgetStatusPending, b.Data.Status)

	r = test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    2,
		Action:   "approve",
		Approver: "cfo",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodGet, budget.Data.Links.Self, "")
	test.DecodeResponse(suite.T(), &r, &b)
	assert.Equal(suite.T(), models.BudgetStatusApproved, b.Data.Status)
}

func (suite *TestSuiteStandard) TestBudgetsApprovalReject() {
	budget := createTestBudget(suite.T(), v1.BudgetEditable{})

	r := test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    1,
		Action:   "reject",
		Approver: "cfo",
		Comment:  "Over the department cap",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var b v1.BudgetResponse
	r = test.Request(suite.T(), http.MethodGet, budget.Data.Links.Self, "")
	test.DecodeResponse(suite.T(), &r, &b)
	assert.Equal(suite.T(), models.BudgetStatusRejected, b.Data.Status)
}

// TestBudgetsApprovalReturn verifies that a returned budget goes back to
// draft and can be submitted again, opening a new cycle.
func (suite *TestSuiteStandard) TestBudgetsApprovalReturn() {
	budget := createTestBudget(suite.T(), v1.BudgetEditable{})

	r := test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/approvals", v1.ApprovalDecision{
		Level:    1,
		Action:   "return",
		Approver: "cfo",
		Comment:  "Please add the license costs",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var b v1.BudgetResponse
	r = test.Request(suite.T(), http.MethodGet, budget.Data.Links.Self, "")
	test.DecodeResponse(suite.T(), &r, &b)
	assert.Equal(suite.T(), models.BudgetStatusDraft, b.Data.Status)

	r = test.Request(suite.T(), http.MethodPost, budget.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var step v1.ApprovalStepResponse
	test.DecodeResponse(suite.T(), &r, &step)
	assert.Equal(suite.T(), uint(2), step.Data.Cycle)
	assert.Equal(suite.T(), uint8(1), step.Data.Level)
}

func (suite *TestSuiteStandard) TestBudgetsApprovalFails() {
	draft := createTestBudget(suite.T(), v1.BudgetEditable{})

	pending := createTestBudget(suite.T(), v1.BudgetEditable{})
	r := test.Request(suite.T(), http.MethodPost, pending.Data.Links.Self+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		error  string
	}{
		{
			"Invalid action",
			pending.Data.Links.Self + "/approvals",
			v1.ApprovalDecision{Level: 1, Action: "rubber-stamp", Approver: "cfo"},
			http.StatusBadRequest,
			models.ErrApprovalActionInvalid.Error(),
		},
		{
			"Budget not pending",
			draft.Data.Links.Self + "/approvals",
			v1.ApprovalDecision{Level: 1, Action: "approve", Approver: "cfo"},
			http.StatusBadRequest,
			models.ErrBudgetNotPending.Error(),
		},
		{
			"Missing approver",
			pending.Data.Links.Self + "/approvals",
			`{ "level": 1, "action": "approve" }`,
			http.StatusBadRequest,
			"",
		},
		{
			"No budget with this ID",
			fmt.Sprintf("http://example.com/v1/budgets/%s/approvals", uuid.New()),
			v1.ApprovalDecision{Level: 1, Action: "approve", Approver: "cfo"},
			http.StatusNotFound,
			models.ErrResourceNotFound.Error(),
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, tt.path, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.error != "" {
				var response v1.ApprovalStepResponse
				test.DecodeResponse(t, &r, &response)
				assert.Contains(t, *response.Error, tt.error)
			}
		})
	}
}
