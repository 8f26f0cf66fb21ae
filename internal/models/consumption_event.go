package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReferenceType is the kind of source document a consumption event
// originates from. The set is closed, free-form references are rejected.
type ReferenceType string

const (
	ReferenceTypeExpense       ReferenceType = "expense"
	ReferenceTypePurchaseOrder ReferenceType = "purchase_order"
	ReferenceTypeInvoice       ReferenceType = "invoice"
)

// Valid reports whether the reference type is one of the known kinds.
func (r ReferenceType) Valid() bool {
	switch r {
	case ReferenceTypeExpense, ReferenceTypePurchaseOrder, ReferenceTypeInvoice:
		return true
	}

	return false
}

// ConsumptionEvent is an immutable record of spend against an allocation.
//
// Events form an append-only ledger: once written they are never changed
// or deleted. Reversals are recorded as new events with a negative amount.
// The reference is unique per allocation so that a retried posting cannot
// be recorded twice.
type ConsumptionEvent struct {
	DefaultModel
	AllocationID  uuid.UUID       `json:"allocationId" gorm:"uniqueIndex:consumption_event_reference" example:"10be20c2-c2d6-455b-b737-8b283e1f6e52"` // ID of the allocation the event belongs to
	Allocation    Allocation      `json:"-"`
	Date          types.Date      `json:"date" example:"2026-03-14T00:00:00Z"`                                                                        // Day the spend occurred
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"12000000"`                                                        // Amount consumed. Negative for reversals
	ReferenceType ReferenceType   `json:"referenceType" gorm:"uniqueIndex:consumption_event_reference" example:"invoice"`                             // Kind of source document
	ReferenceID   string          `json:"referenceId" gorm:"uniqueIndex:consumption_event_reference" example:"INV-2026-0042"`                         // ID of the source document
	Description   string          `json:"description" example:"Server hardware Q1" default:""`                                                        // Description of the spend
}

func (e *ConsumptionEvent) BeforeSave(_ *gorm.DB) error {
	e.ReferenceID = strings.TrimSpace(e.ReferenceID)
	e.Description = strings.TrimSpace(e.Description)

	if !e.ReferenceType.Valid() {
		return ErrConsumptionReferenceInvalid
	}

	if e.Amount.IsZero() {
		return ErrConsumptionAmountZero
	}

	return nil
}

func (e *ConsumptionEvent) BeforeCreate(tx *gorm.DB) error {
	_ = e.DefaultModel.BeforeCreate(tx)

	if e.Date.IsZero() {
		e.Date = types.DateOf(tx.NowFunc())
	}

	toSave := tx.Statement.Dest.(*ConsumptionEvent)
	return e.checkIntegrity(tx, *toSave)
}

// BeforeUpdate refuses any change to a stored event, the ledger is
// append-only.
func (e *ConsumptionEvent) BeforeUpdate(_ *gorm.DB) error {
	return ErrConsumptionImmutable
}

// BeforeDelete refuses deletion, the ledger is append-only. Full-instance
// cleanup bypasses this through raw SQL.
func (e *ConsumptionEvent) BeforeDelete(_ *gorm.DB) error {
	return ErrConsumptionImmutable
}

func (e *ConsumptionEvent) checkIntegrity(tx *gorm.DB, toSave ConsumptionEvent) error {
	return tx.First(&Allocation{}, toSave.AllocationID).Error
}

// Returns all consumption events on this instance for export
func (ConsumptionEvent) Export() (json.RawMessage, error) {
	var events []ConsumptionEvent
	err := DB.Unscoped().Where(&ConsumptionEvent{}).Find(&events).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&events)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
