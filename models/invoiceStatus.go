package models

import (
	"errors"
	"strconv"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid:
		return true
	}
	return false
}

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(s))), nil
}

func (s *InvoiceStatus) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("invoice status must be string")
	}
	status := InvoiceStatus(str)
	if !status.IsValid() {
		return errors.New("invalid invoice status")
	}
	*s = status
	return nil
}

// OutcomeKind tags the result of an invoice mutation.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeValidationFailure
	OutcomeStoreFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationFailure:
		return "validation_failure"
	case OutcomeStoreFailure:
		return "store_failure"
	}
	return "unknown"
}
