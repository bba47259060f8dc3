package services

import (
	"fmt"
	"time"
)

const DefaultTimezoneOffsetHours = 8

// Clock supplies the current instant and calendar date in the service zone.
type Clock interface {
	Today() time.Time
	Now() time.Time
}

type FixedZoneClock struct {
	location *time.Location
}

// NewFixedZoneClock returns a wall clock pinned to UTC+offsetHours.
func NewFixedZoneClock(offsetHours int) *FixedZoneClock {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	switch offsetHours {
	case 0:
		name = "UTC"
	case DefaultTimezoneOffsetHours:
		name = "CST"
	}
	return &FixedZoneClock{location: time.FixedZone(name, offsetHours*3600)}
}

func (clock *FixedZoneClock) Now() time.Time {
	return time.Now().In(clock.location)
}

func (clock *FixedZoneClock) Today() time.Time {
	return DateAtLocation(clock.Now(), clock.location)
}

func (clock *FixedZoneClock) Location() *time.Location {
	return clock.location
}

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

func (clock FixedClock) Now() time.Time {
	return clock.Instant
}

func (clock FixedClock) Today() time.Time {
	return DateAtLocation(clock.Instant, clock.Instant.Location())
}

func clockLocation(clock Clock) *time.Location {
	return clock.Now().Location()
}
