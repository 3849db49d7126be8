package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	model.TransactionTypeBuy: true, model.TransactionTypeSell: true, model.TransactionTypeFee: true,
}

// ValidateCreateTransaction validates a transaction entry request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - symbol: Must be non-empty
//   - type: One of BUY, SELL, FEE (case-insensitive)
//   - quantity: Must be positive
//   - price: Must not be negative; zero is allowed for fees
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	validateDate(errors, req.Date)
	validateSymbol(errors, req.Symbol)
	validateType(errors, req.Type)
	validateQuantity(errors, req.Quantity)
	validatePrice(errors, req.Price)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTransaction validates a transaction edit request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(map[string]string)

	if req.Date != nil {
		validateDate(errors, *req.Date)
	}
	if req.Symbol != nil {
		validateSymbol(errors, *req.Symbol)
	}
	if req.Type != nil {
		validateType(errors, *req.Type)
	}
	if req.Quantity != nil {
		validateQuantity(errors, req.Quantity)
	}
	if req.Price != nil {
		validatePrice(errors, req.Price)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpload validates every row of a bulk upload. Field keys are prefixed
// with the zero-padded, zero-based row index, e.g. "row 003 quantity".
func ValidateUpload(rows []request.CreateTransactionRequest) error {
	if len(rows) == 0 {
		return &Error{Fields: map[string]string{"rows": "upload contains no transactions."}}
	}

	errors := make(map[string]string)
	for i, row := range rows {
		err := ValidateCreateTransaction(row)
		if err == nil {
			continue
		}
		verr, ok := err.(*Error)
		if !ok {
			return err
		}
		for field, msg := range verr.Fields {
			errors[fmt.Sprintf("row %03d %s", i, field)] = fmt.Sprintf("row %d: %s", i, msg)
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ToTransaction converts a validated request into a model transaction.
// Symbol and type are normalised to upper case.
func ToTransaction(req request.CreateTransactionRequest) (model.Transaction, error) {
	date, err := ParseTime(req.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Date:     date,
		Symbol:   NormalizeSymbol(req.Symbol),
		Type:     strings.ToUpper(strings.TrimSpace(req.Type)),
		Quantity: *req.Quantity,
		Price:    *req.Price,
	}, nil
}

// ApplyUpdate merges the provided fields of an edit request onto tx.
func ApplyUpdate(tx model.Transaction, req request.UpdateTransactionRequest) (model.Transaction, error) {
	if req.Date != nil {
		date, err := ParseTime(*req.Date)
		if err != nil {
			return model.Transaction{}, err
		}
		tx.Date = date
	}
	if req.Symbol != nil {
		tx.Symbol = NormalizeSymbol(*req.Symbol)
	}
	if req.Type != nil {
		tx.Type = strings.ToUpper(strings.TrimSpace(*req.Type))
	}
	if req.Quantity != nil {
		tx.Quantity = *req.Quantity
	}
	if req.Price != nil {
		tx.Price = *req.Price
	}
	return tx, nil
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func validateDate(errors map[string]string, date string) {
	if strings.TrimSpace(date) == "" {
		errors["date"] = "Date is required."
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		errors["date"] = "date must be in YYYY-MM-DD format."
	}
}

func validateSymbol(errors map[string]string, symbol string) {
	if strings.TrimSpace(symbol) == "" {
		errors["symbol"] = "symbol is required."
	}
}

func validateType(errors map[string]string, txType string) {
	t := strings.ToUpper(strings.TrimSpace(txType))
	if t == "" {
		errors["type"] = "transaction type is required."
	} else if !ValidTransactionType[t] {
		errors["type"] = "Transaction type must be BUY, SELL, or FEE"
	}
}

func validateQuantity(errors map[string]string, quantity *float64) {
	switch {
	case quantity == nil:
		errors["quantity"] = "quantity is required."
	case *quantity <= 0:
		errors["quantity"] = "quantity must be a positive number."
	}
}

func validatePrice(errors map[string]string, price *float64) {
	switch {
	case price == nil:
		errors["price"] = "share price is required."
	case *price < 0:
		errors["price"] = "share price must be a positive number."
	}
}
