package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	parsed, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(570), parsed)
	assert.Equal(t, "09:30", parsed.String())

	parsed, err = ParseTimeOfDay("00:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(0), parsed)

	parsed, err = ParseTimeOfDay("23:59")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(1439), parsed)
}

func TestParseTimeOfDayRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"25:00", "24:00", "9:00", "09:60", "0900", "09:00:00", "", "ab:cd", "-1:00"} {
		_, err := ParseTimeOfDay(raw)
		require.Error(t, err, "expected %q to be rejected", raw)
	}
}

func TestToCanonical(t *testing.T) {
	// New York is UTC-5 in January.
	utc, offset, err := ToCanonical("09:00", "2024-01-15", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "14:00", utc)
	assert.Equal(t, 0, offset)

	// Tokyo early morning rolls back to the previous UTC day.
	utc, offset, err = ToCanonical("01:00", "2024-01-15", "Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "16:00", utc)
	assert.Equal(t, -1, offset)

	// Los Angeles late evening rolls forward to the next UTC day.
	utc, offset, err = ToCanonical("23:00", "2024-01-15", "America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, "07:00", utc)
	assert.Equal(t, 1, offset)

	utc, offset, err = ToCanonical("12:00", "2024-01-15", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "12:00", utc)
	assert.Equal(t, 0, offset)
}

func TestToCanonicalRejectsBadInput(t *testing.T) {
	_, _, err := ToCanonical("25:00", "2024-01-15", "UTC")
	require.Error(t, err)

	_, _, err = ToCanonical("09:00", "2024-13-40", "UTC")
	require.Error(t, err)

	_, _, err = ToCanonical("09:00", "2024-01-15", "Not/AZone")
	require.Error(t, err)
}
