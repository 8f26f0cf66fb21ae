// Package importer transforms ledger files from external systems into
// consumption events.
package importer

import (
	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
)

// EventPreview is a consumption event to be imported.
//
// The parsers fill in the event and the account code from the file, the
// allocation matching then resolves the account code to an allocation of
// the target budget.
type EventPreview struct {
	Event       models.ConsumptionEvent `json:"event"`
	AccountCode string                  `json:"accountCode"` // Account code from the source file
	Matched     bool                    `json:"matched"`     // True once an allocation has been resolved
}

// MatchAllocations resolves the account code of every preview to an
// allocation of the budget.
//
// An exact match on the account code wins. If none exists, allocations
// whose account code is a glob pattern (e.g. "70*" for an account group)
// are tried in order. Previews without any match stay unmatched, the
// caller decides whether that is an error.
func MatchAllocations(allocations []models.Allocation, previews []EventPreview) []EventPreview {
	matched := make([]EventPreview, 0, len(previews))

	for _, preview := range previews {
		preview.Event.AllocationID = uuid.Nil
		preview.Matched = false

		if id, ok := matchAccount(allocations, preview.AccountCode); ok {
			preview.Event.AllocationID = id
			preview.Matched = true
		}

		matched = append(matched, preview)
	}

	return matched
}
