package boletos

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/boletos-tracker/internal/common"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		name          string
		raw           string
		expected      string
		expectedError string
	}{
		{name: "json_number", raw: "1234.56", expected: "1234.56"},
		{name: "one_decimal", raw: "1234.5", expected: "1234.50"},
		{name: "integer", raw: "10", expected: "10.00"},
		{name: "comma_decimal", raw: "150,75", expected: "150.75"},
		{name: "brazilian_thousands", raw: "1.234,56", expected: "1234.56"},
		{name: "currency_prefix", raw: "R$ 1.234,56", expected: "1234.56"},
		{name: "nbsp_separator", raw: "R$\u00a01.000,00", expected: "1000.00"},
		{name: "surrounding_spaces", raw: "  99.90 ", expected: "99.90"},
		{name: "empty", raw: "", expectedError: "is required"},
		{name: "prefix_only", raw: "R$", expectedError: "is required"},
		{name: "letters", raw: "abc", expectedError: "must be a number"},
		{name: "two_commas", raw: "1,2,3", expectedError: "must be a number"},
		{name: "zero", raw: "0", expectedError: "must be greater than zero"},
		{name: "negative", raw: "-5.00", expectedError: "must be greater than zero"},
		{name: "three_decimals", raw: "1.005", expectedError: "at most two decimal places"},
		{name: "too_large", raw: "1000000000000", expectedError: "is too large"},
		{name: "largest_value", raw: "999999999999.99", expected: "999999999999.99"},
		{name: "exponent_form", raw: "1.5e2", expected: "150.00"},
		{name: "trailing_zero_scale", raw: "12.500", expected: "12.50"},
		{name: "huge_exponent", raw: "1e10000000", expectedError: "is too large"},
		{name: "huge_exponent_with_fraction", raw: "0.5e100000000", expectedError: "is too large"},
		{name: "tiny_exponent", raw: "1e-10000000", expectedError: "at most two decimal places"},
		{name: "long_zero_fraction", raw: "1.0000000000000000000000", expectedError: "at most two decimal places"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start := time.Now()
			got, err := ParseAmount(tc.raw)
			assert.Less(t, time.Since(start), time.Second)
			if tc.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
				assert.True(t, errors.Is(err, common.ErrValidation))

				var ve *common.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "valor", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.StringFixed(2))
		})
	}
}
