package handlers

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestMonthRange(t *testing.T) {
	first, last, err := monthRange("2024-06")
	assert.Equal(t, nil, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), last)

	// Leap February.
	first, last, err = monthRange("2024-02")
	assert.Equal(t, nil, err)
	assert.Equal(t, 29, last.Day())
	assert.Equal(t, time.February, first.Month())

	// December rolls into the next year correctly.
	_, last, err = monthRange("2023-12")
	assert.Equal(t, nil, err)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), last)
}

func TestMonthRangeRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "2024", "2024-13", "06-2024", "2024-06-01"} {
		_, _, err := monthRange(in)
		assert.NotEqual(t, nil, err)
	}
}
