package importer

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	"github.com/ryanuber/go-glob"
)

// matchAccount finds the allocation covering an account code.
func matchAccount(allocations []models.Allocation, accountCode string) (uuid.UUID, bool) {
	// An allocation for exactly this account always wins
	for _, allocation := range allocations {
		if allocation.AccountCode == accountCode {
			return allocation.ID, true
		}
	}

	// Allocations for account groups use glob patterns
	for _, allocation := range allocations {
		if !strings.Contains(allocation.AccountCode, glob.GLOB) {
			continue
		}

		if glob.Glob(allocation.AccountCode, accountCode) {
			return allocation.ID, true
		}
	}

	return uuid.Nil, false
}
