package providers

import "time"

// Clock abstracts the current-time reading so that session minting,
// shift mutation and persistence staleness checks stay deterministic
// under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewClock() Clock {
	return systemClock{}
}
