package bcbp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFlightDate(t *testing.T) {
	date, err := ResolveFlightDate(335, 2024, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC), date)

	date, err = ResolveFlightDate(1, 2025, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestResolveFlightDateLeapYear(t *testing.T) {
	date, err := ResolveFlightDate(366, 2024, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), date)

	// Day 366 does not exist in a common year.
	_, err = ResolveFlightDate(366, 2023, time.UTC)
	assert.Error(t, err)
}

func TestResolveFlightDateOutOfRange(t *testing.T) {
	_, err := ResolveFlightDate(0, 2024, time.UTC)
	assert.Error(t, err)

	_, err = ResolveFlightDate(367, 2024, time.UTC)
	assert.Error(t, err)
}

func TestResolveFlightDateNilLocationDefaultsUTC(t *testing.T) {
	date, err := ResolveFlightDate(32, 2025, nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, date.Location())
	assert.Equal(t, time.February, date.Month())
	assert.Equal(t, 1, date.Day())
}
