package models

import (
	"time"
)

// InvoicesPath is the listing view every invoice mutation revalidates.
const InvoicesPath = "/dashboard/invoices"

type Invoice struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	CustomerId string        `gorm:"size:255;not null" json:"customer_id"`
	Amount     int64         `gorm:"not null" json:"amount"`
	Status     InvoiceStatus `gorm:"size:16;not null" json:"status"`
	Date       time.Time     `gorm:"type:date;not null" json:"date"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// DateString returns the issue date as YYYY-MM-DD.
func (inv Invoice) DateString() string {
	return inv.Date.Format(time.DateOnly)
}
