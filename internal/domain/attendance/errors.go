package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Push-in errors
	ErrPermissionDenied = errors.New("location permission denied")
	ErrOutOfRange       = errors.New("you are outside the project site radius")
	ErrAlreadyPushedIn  = errors.New("you have already pushed in today")
	ErrSessionClosed    = errors.New("today's session for this project is already closed")

	// Push-out errors
	ErrNotPushedIn = errors.New("you have not pushed in today")

	ErrRecordNotFound = errors.New("attendance record not found")
)

// OutOfRangeError carries the measured distance. errors.Is(err, ErrOutOfRange) holds.
type OutOfRangeError struct {
	Distance float64
	Radius   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %.0f m from site (limit %.0f m)", ErrOutOfRange.Error(), e.Distance, e.Radius)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
