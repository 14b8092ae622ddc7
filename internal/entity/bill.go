package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/boletos-tracker/constants"
)

// DateLayout is the wire and storage layout for calendar dates.
const DateLayout = "2006-01-02"

// Bill represents a boleto for data transfer between layers.
type Bill struct {
	ID          int64
	Supplier    string
	Amount      decimal.Decimal
	DueDate     time.Time
	Status      constants.BillStatus
	Attachment  *string
	PaymentDate *time.Time
}

// BillInput carries the columns written on insert.
type BillInput struct {
	Supplier    string
	Amount      decimal.Decimal
	DueDate     time.Time
	Status      constants.BillStatus
	Attachment  *string
	PaymentDate *time.Time
}

// IsPaid reports whether the bill reached its terminal status.
func (b *Bill) IsPaid() bool {
	return b.Status == constants.BillStatusPaid
}
