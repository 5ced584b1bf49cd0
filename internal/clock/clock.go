package clock

import (
	"sync"
	"time"

	"github.com/slok/herdops/internal/model"
)

// Clock tells the engine what day it is.
type Clock interface {
	Now() time.Time
	// Today is the current calendar date in the deployment time zone.
	Today() model.Date
}

// NewSystem returns a clock backed by the system time in loc. A nil location means UTC.
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return system{loc: loc}
}

type system struct {
	loc *time.Location
}

func (s system) Now() time.Time { return time.Now().In(s.loc) }
func (s system) Today() model.Date { return model.DateOf(s.Now()) }

// Fixed is a manually controlled clock, safe for concurrent use.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock frozen at now.
func NewFixed(now time.Time) *Fixed { return &Fixed{now: now} }

// NewFixedDate returns a clock frozen at midday UTC of date d (YYYY-MM-DD).
func NewFixedDate(d string) *Fixed {
	return NewFixed(model.MustParseDate(d).Time().Add(12 * time.Hour))
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Today() model.Date { return model.DateOf(f.Now()) }

// Set moves the clock to now.
func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// AddDays moves the clock n days forward (backwards if negative).
func (f *Fixed) AddDays(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.AddDate(0, 0, n)
}
