// Package ledgercsv parses ledger CSV exports into consumption events.
//
// The expected format is a header line followed by records with the
// columns date, account, amount, currency, reference type, reference and
// description. Currency, reference type and reference may be empty.
package ledgercsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerline/backend/internal/importer"
	"github.com/ledgerline/backend/internal/importer/helpers"
	"github.com/ledgerline/backend/internal/models"
	"github.com/ledgerline/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Parse parses a ledger CSV file into event previews for the budget.
func Parse(f io.Reader, budget models.Budget) ([]importer.EventPreview, error) {
	reader := csv.NewReader(f)

	// We can reuse the array in the background to improve performance
	reader.ReuseRecord = true

	// All lines, including the header, must have all columns
	reader.FieldsPerRecord = Description + 1

	var previews []importer.EventPreview

	// Skip the first line
	_, err := reader.Read()
	if err == io.EOF {
		return []importer.EventPreview{}, nil
	}
	if err != nil {
		return csvReadError(reader, fmt.Errorf("could not read the header line: %w", err))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not read line in CSV: %w", err))
		}

		date, err := types.ParseDate(record[Date])
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not parse date: %w", err))
		}

		if record[Account] == "" {
			return csvReadError(reader, errors.New("no account is set for the event"))
		}

		amount, err := decimal.NewFromString(record[Amount])
		if err != nil {
			return csvReadError(reader, errors.New("the amount could not be parsed to a decimal"))
		}

		if amount.IsZero() {
			return csvReadError(reader, errors.New("the amount for an event must not be 0"))
		}

		if record[Currency] != "" {
			unit, err := currency.ParseISO(record[Currency])
			if err != nil {
				return csvReadError(reader, fmt.Errorf("the currency is not a valid ISO 4217 code: %w", err))
			}

			if budget.Currency != "" && unit.String() != budget.Currency {
				return csvReadError(reader, fmt.Errorf("the event currency %s does not match the budget currency %s", unit, budget.Currency))
			}
		}

		referenceType := models.ReferenceType(record[ReferenceType])
		if referenceType == "" {
			referenceType = models.ReferenceTypeExpense
		}
		if !referenceType.Valid() {
			return csvReadError(reader, models.ErrConsumptionReferenceInvalid)
		}

		// Lines without a source document reference get a line hash
		// as reference so that a re-imported file does not create
		// duplicate events
		reference := record[Reference]
		if reference == "" {
			reference = helpers.Sha256String(strings.Join(record, ","))
		}

		previews = append(previews, importer.EventPreview{
			AccountCode: record[Account],
			Event: models.ConsumptionEvent{
				Date:          date,
				Amount:        amount,
				ReferenceType: referenceType,
				ReferenceID:   reference,
				Description:   record[Description],
			},
		})
	}

	return previews, nil
}

// csvReadError returns an error including the line of the input
// the error occurred in.
func csvReadError(r *csv.Reader, err error) ([]importer.EventPreview, error) {
	// always use the first field, we are only interested in the line
	line, _ := r.FieldPos(1)

	return []importer.EventPreview{}, fmt.Errorf("error in line %d of the CSV: %w", line, err)
}
