package infrastructure

import "time"

// SystemClock is the production Clock implementation.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
