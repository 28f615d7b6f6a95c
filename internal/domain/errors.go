package domain

import "errors"

var (
	// Money errors
	ErrInvalidAmount    = errors.New("amount must be a finite, non-negative number")
	ErrCurrencyMismatch = errors.New("cannot combine amounts in different currencies")

	// Line item errors
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidDiscount = errors.New("discount exceeds line value")
	ErrInvalidTaxRate  = errors.New("tax rate must be non-negative")
	ErrInvalidCess     = errors.New("cess specification is invalid")

	// Invoice errors
	ErrEmptyInvoice     = errors.New("invoice must contain at least one line item")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrDuplicateInvoice = errors.New("invoice has already been posted")

	// Ledger errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrReceivableNotFound = errors.New("no outstanding receivable for account")
	ErrOverPayment        = errors.New("payment exceeds outstanding receivable")
)
