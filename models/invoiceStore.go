package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/invoices_backend/utils"
	"gorm.io/gorm"
)

const (
	insertInvoiceSQL = "INSERT INTO invoices (customer_id, amount, status, date) VALUES (?, ?, ?, ?)"
	updateInvoiceSQL = "UPDATE invoices SET customer_id = ?, amount = ?, status = ? WHERE id = ?"
	deleteInvoiceSQL = "DELETE FROM invoices WHERE id = ?"
)

// NewInvoiceRow is what an insert binds. The store assigns the id.
type NewInvoiceRow struct {
	CustomerId string
	Amount     int64
	Status     InvoiceStatus
	Date       string
}

type InvoiceStore interface {
	InsertInvoice(ctx context.Context, row NewInvoiceRow) error
	UpdateInvoice(ctx context.Context, id string, customerId string, amount int64, status InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id string) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]*Invoice, error)
}

// GormInvoiceStore runs one statement per call against the pool it was built with.
type GormInvoiceStore struct {
	db *gorm.DB
}

func NewGormInvoiceStore(db *gorm.DB) *GormInvoiceStore {
	return &GormInvoiceStore{db: db}
}

func (s *GormInvoiceStore) InsertInvoice(ctx context.Context, row NewInvoiceRow) error {
	return s.db.WithContext(ctx).
		Exec(insertInvoiceSQL, row.CustomerId, row.Amount, string(row.Status), row.Date).
		Error
}

// UpdateInvoice leaves the issue date alone. Updating a missing id is not an error.
func (s *GormInvoiceStore) UpdateInvoice(ctx context.Context, id string, customerId string, amount int64, status InvoiceStatus) error {
	return s.db.WithContext(ctx).
		Exec(updateInvoiceSQL, customerId, amount, string(status), id).
		Error
}

// DeleteInvoice is idempotent.
func (s *GormInvoiceStore) DeleteInvoice(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Exec(deleteInvoiceSQL, id).Error
}

func (s *GormInvoiceStore) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var result Invoice
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (s *GormInvoiceStore) ListInvoices(ctx context.Context) ([]*Invoice, error) {
	var results []*Invoice
	err := s.db.WithContext(ctx).Order("date DESC").Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
