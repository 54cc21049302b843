package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("", "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", got)

	got, err = ParseDate(" 2024-02-29 ", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	for _, bad := range []string{"2023-02-29", "2024-13-01", "10/05/2024", "today"} {
		_, err := ParseDate(bad, "")
		assert.Equal(t, KindValidation, KindOf(err), bad)
	}
}

func TestDateRange(t *testing.T) {
	from, to := DateRange("2024-03-02", 7)
	assert.Equal(t, "2024-02-25", from)
	assert.Equal(t, "2024-03-02", to)

	from, to = DateRange("2024-01-01", 1)
	assert.Equal(t, "2024-01-01", from)
	assert.Equal(t, from, to)

	assert.Equal(t, "2025-01-01", AddDays("2024-12-31", 1))
}

func TestDateOfUsesLocalCalendar(t *testing.T) {
	ts := time.Date(2024, 5, 10, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "2024-05-10", DateOf(ts))
	assert.Equal(t, "2024-05-11", DateOf(ts.Add(2*time.Minute)))
}
