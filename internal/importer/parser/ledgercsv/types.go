package ledgercsv

// The columns of a ledger CSV file.
const (
	Date = iota
	Account
	Amount
	Currency
	ReferenceType
	Reference
	Description
)
