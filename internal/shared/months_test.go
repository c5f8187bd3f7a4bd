package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonthPrev(t *testing.T) {
	prev := Month{Year: 2024, Month: time.September}.Prev()
	require.Equal(t, Month{Year: 2024, Month: time.August}, prev)

	// Year boundary.
	prev = Month{Year: 2025, Month: time.January}.Prev()
	require.Equal(t, Month{Year: 2024, Month: time.December}, prev)
}

func TestMonthBounds(t *testing.T) {
	start, end := Month{Year: 2024, Month: time.February}.Bounds(nil)
	require.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), end)

	// December rolls into the next year.
	start, end = Month{Year: 2024, Month: time.December}.Bounds(nil)
	require.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthContains(t *testing.T) {
	m := Month{Year: 2024, Month: time.September}
	require.True(t, m.Contains(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, m.Contains(time.Date(2024, time.September, 30, 23, 59, 59, 0, time.UTC)))
	require.False(t, m.Contains(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, m.Contains(time.Date(2023, time.September, 15, 0, 0, 0, 0, time.UTC)))
}

func TestMonthString(t *testing.T) {
	require.Equal(t, "2024-09", Month{Year: 2024, Month: time.September}.String())
	require.Equal(t, "2025-01", Month{Year: 2025, Month: time.January}.String())
}
