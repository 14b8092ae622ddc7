package boletos

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/boletos-tracker/internal/common"
)

// maxAmount is the first value that no longer fits NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

const (
	// maxIntegerDigits is the number of digits left of the point in NUMERIC(14,2).
	maxIntegerDigits = 12
	// minExponent bounds the scale accepted before rounding. Exponents are
	// checked first because Round and Cmp rescale to a big.Int of 10^|exp|.
	minExponent = -20
)

// ParseAmount turns a currency value into an exact decimal.
//
// A comma, when present, is the decimal separator and dots are thousands
// separators ("1.234,56"). Without a comma the dot is the decimal separator
// ("1234.56", the JSON number form). An optional "R$" prefix is ignored.
// Values must be positive and carry at most two decimal places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, common.NewValidationError("valor", raw, "is required")
	}

	if strings.Contains(s, ",") {
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, common.NewValidationError("valor", raw, "must be a number")
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewValidationError("valor", raw, "must be a number")
	}
	if d.Sign() <= 0 {
		return decimal.Zero, common.NewValidationError("valor", raw, "must be greater than zero")
	}
	if d.NumDigits()+int(d.Exponent()) > maxIntegerDigits {
		return decimal.Zero, common.NewValidationError("valor", raw, "is too large")
	}
	if d.Exponent() < minExponent {
		return decimal.Zero, common.NewValidationError("valor", raw, "must have at most two decimal places")
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, common.NewValidationError("valor", raw, "must have at most two decimal places")
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, common.NewValidationError("valor", raw, "is too large")
	}
	return d.Round(2), nil
}
