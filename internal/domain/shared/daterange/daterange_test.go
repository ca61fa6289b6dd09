package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTruncatesToDays(t *testing.T) {
	dr, err := New(
		time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), dr.CheckIn)
	assert.Equal(t, 3, dr.Nights())
}

func TestNewRejectsSameDay(t *testing.T) {
	_, err := New(
		time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := DateRange{CheckIn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)}
	b := DateRange{CheckIn: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)}
	c := DateRange{CheckIn: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)}

	assert.False(t, a.Overlaps(b))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}

func TestOnOrAfter(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, OnOrAfter(time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC), day))
	assert.True(t, OnOrAfter(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), day))
	assert.False(t, OnOrAfter(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), day))
}
