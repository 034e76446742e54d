package structure

import (
	"fmt"
	"net/http"

	"github.com/vilaverde/guest-portal-backend/internal/pkg/apperror"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
)

var (
	ErrInvalidGenerateRange = apperror.New(http.StatusBadRequest, "start must be a HH:mm time before end")
	ErrInvalidDuration      = apperror.New(http.StatusBadRequest, "duration must be greater than zero minutes")
	ErrInvalidGap           = apperror.New(http.StatusBadRequest, "gap must be zero or more minutes")
)

// GenerateTimeSlots derives the slot grid between start and end (HH:mm):
// each slot is durationMinutes long, consecutive slots are separated by
// gapMinutes, and generation stops once the next slot's end would pass end.
// Returns zero slots when the duration does not fit at least once.
// Duplicate ranges from repeated calls are an editorial concern, not an error.
func GenerateTimeSlots(start, end string, durationMinutes, gapMinutes int) ([]TimeSlot, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if gapMinutes < 0 {
		return nil, ErrInvalidGap
	}
	if !request.ValidClock(start) || !request.ValidClock(end) || start >= end {
		return nil, ErrInvalidGenerateRange
	}

	startMin := clockToMinutes(start)
	endMin := clockToMinutes(end)

	var slots []TimeSlot
	for cur := startMin; cur+durationMinutes <= endMin; cur += durationMinutes + gapMinutes {
		s := minutesToClock(cur)
		e := minutesToClock(cur + durationMinutes)
		label := s + "-" + e
		slots = append(slots, TimeSlot{
			ID:        label,
			StartTime: s,
			EndTime:   e,
			Label:     label,
		})
	}
	return slots, nil
}

// clockToMinutes converts a validated HH:mm string to minutes from midnight.
func clockToMinutes(s string) int {
	var h, m int
	fmt.Sscanf(s, "%d:%d", &h, &m)
	return h*60 + m
}

// minutesToClock converts minutes from midnight to a zero-padded HH:mm string.
func minutesToClock(v int) string {
	return fmt.Sprintf("%02d:%02d", v/60, v%60)
}
