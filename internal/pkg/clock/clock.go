package clock

import "time"

// Clock abstracts the current time so date-sensitive logic (seeding,
// target-date resolution, implement validation) can be tested with a
// controlled time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by the wall clock.
func System() Clock { return systemClock{} }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time { return f.t }
