package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseDatetime — все входящие форматы сводятся к каноническому виду
func TestParseDatetime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"RFC3339", "2024-12-25T19:00:00Z", "2024-12-25 19:00:00"},
		{"ISO без зоны", "2024-12-25T19:00:00", "2024-12-25 19:00:00"},
		{"через пробел", "2024-12-25 19:00:00", "2024-12-25 19:00:00"},
		{"ISO без секунд", "2024-12-25T19:00", "2024-12-25 19:00:00"},
		{"пробел без секунд", "2024-12-25 19:00", "2024-12-25 19:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatetime(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDatetimeInvalid(t *testing.T) {
	for _, raw := range []string{"", "tomorrow", "25-12-2024 19:00", "2024-12-25"} {
		_, err := ParseDatetime(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, "raw=%q", raw)
	}
}

func TestSplitDatetime(t *testing.T) {
	date, timeOfDay, err := SplitDatetime("2024-12-25T19:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-25", date)
	assert.Equal(t, "19:30", timeOfDay)

	_, _, err = SplitDatetime("not a date")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJoinDatetime(t *testing.T) {
	assert.Equal(t, "2024-12-25 19:30:00", JoinDatetime("2024-12-25", "19:30"))
}

// TestValidStatus — допустимы только известные статусы жизненного цикла
func TestValidStatus(t *testing.T) {
	valid := []ReservationStatus{
		ReservationStatusPending,
		ReservationStatusConfirmed,
		ReservationStatusCancelled,
		ReservationStatusCompleted,
		ReservationStatusNoShow,
		ReservationStatusCancelledByCustomer,
		ReservationStatusCancelledByRestaurant,
	}
	for _, s := range valid {
		assert.True(t, ValidStatus(s), "status=%s", s)
	}

	assert.False(t, ValidStatus("teleported"))
	assert.False(t, ValidStatus(""))
}
