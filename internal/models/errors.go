package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Budget errors
var (
	ErrBudgetCodeNotUnique     = errors.New("the budget code is already in use")
	ErrBudgetPeriodInvalid     = errors.New("the budget period must not end before it starts")
	ErrBudgetTypeInvalid       = errors.New("the budget type must be one of: annual, quarterly, monthly, project")
	ErrBudgetDepthExceeded     = errors.New("budgets must not be nested more than 5 levels deep")
	ErrBudgetApprovedImmutable = errors.New("an approved budget cannot be changed, create a child budget instead")
	ErrBudgetNotApproved       = errors.New("consumption can only be posted for allocations of an approved budget")
	ErrBudgetNotDraft          = errors.New("only budgets in draft status can be submitted for approval")
	ErrBudgetNotPending        = errors.New("the budget is not pending approval")
	ErrBudgetLocked            = errors.New("the budget is locked by another operation, please retry")
)

// Allocation errors
var (
	ErrAllocationMethodInvalid     = errors.New("the allocation method must be one of: fixed, percentage, historical")
	ErrAllocationPercentageInvalid = errors.New("the percentage for an allocation must be larger than 0 and at most 100")
	ErrAllocationOverCommitted     = errors.New("the sum of all allocations must not exceed the budget total")
	ErrAllocationSuperseded        = errors.New("a superseded allocation cannot be changed")
)

// Consumption event errors
var (
	ErrConsumptionImmutable        = errors.New("consumption events are append-only and can neither be changed nor deleted")
	ErrConsumptionDuplicate        = errors.New("a consumption event with this reference already exists for the allocation")
	ErrConsumptionAmountZero       = errors.New("the amount for a consumption event must not be 0")
	ErrConsumptionReferenceInvalid = errors.New("the reference type must be one of: expense, purchase_order, invoice")
)

// Alert errors
var (
	ErrAlertExists            = errors.New("an alert of this type already exists for the allocation")
	ErrAlertTransitionInvalid = errors.New("this status transition is not allowed for the alert")
)

// Approval errors
var (
	ErrApprovalOutOfOrder    = errors.New("approval steps must be recorded in level order")
	ErrApprovalActionInvalid = errors.New("the approval action must be one of: approve, reject, return")
	ErrApprovalStepExists    = errors.New("an approval step for this level already exists in the current submission cycle")
)
