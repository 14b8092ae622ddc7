package constants

import "strings"

// BillStatus is the canonical status for rows in boletos.
type BillStatus string

// Stable values (store these exact strings in DB).
const (
	BillStatusPending BillStatus = "Pendente" // created, awaiting payment
	BillStatusPaid    BillStatus = "Pago"     // terminal
)

var statusAliases = map[string]BillStatus{
	"pendente": BillStatusPending,
	"pending":  BillStatusPending,
	"pago":     BillStatusPaid,
	"paid":     BillStatusPaid,
}

// ParseBillStatus maps wire values, including the English aliases, onto a BillStatus.
func ParseBillStatus(s string) (BillStatus, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Valid reports whether s is one of the stored values.
func (s BillStatus) Valid() bool {
	return s == BillStatusPending || s == BillStatusPaid
}

func (s BillStatus) String() string { return string(s) }
