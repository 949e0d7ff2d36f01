package data

import "time"

// TimeProvider abstracts the clock so repository timestamps can be pinned
// in tests.
type TimeProvider interface {
	Now() time.Time
}

// systemClock is the TimeProvider used outside tests.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
