package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYMD(t *testing.T) {
	d, err := ParseYMD("2025-02-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2025-02-20", FormatYMD(d))

	for _, bad := range []string{"", "2025-2-20", "20/02/2025", "2025-02-30", "2025-02-20T10:00:00Z"} {
		_, err := ParseYMD(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateOnly(t *testing.T) {
	local := time.Date(2025, 2, 20, 23, 59, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), DateOnly(local))
}

func TestOptionalHelpers(t *testing.T) {
	assert.Equal(t, "", StrOrEmpty(nil))
	s := "x"
	assert.Equal(t, "x", StrOrEmpty(&s))

	assert.Nil(t, FormatOptionalYMD(nil))
	d := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	got := FormatOptionalYMD(&d)
	require.NotNil(t, got)
	assert.Equal(t, "2025-01-05", *got)
}
