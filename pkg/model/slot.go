package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses "HH:MM" (or "H:MM") into a Clock.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("clock %q: invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("clock %q: invalid minute", s)
	}
	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for compile-time constants.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

var dayCodes = map[byte]time.Weekday{
	'M': time.Monday,
	'T': time.Tuesday,
	'W': time.Wednesday,
	'R': time.Thursday,
	'F': time.Friday,
	'S': time.Saturday,
	'U': time.Sunday,
}

var dayLetters = map[time.Weekday]byte{
	time.Monday:    'M',
	time.Tuesday:   'T',
	time.Wednesday: 'W',
	time.Thursday:  'R',
	time.Friday:    'F',
	time.Saturday:  'S',
	time.Sunday:    'U',
}

// DayPattern is the set of weekdays a slot meets on, e.g. MWF.
type DayPattern []time.Weekday

// ParseDayPattern parses registrar day codes (M T W R F S U) such as "MWF" or "TR".
func ParseDayPattern(s string) (DayPattern, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("day pattern is empty")
	}
	var p DayPattern
	for i := 0; i < len(s); i++ {
		d, ok := dayCodes[s[i]]
		if !ok {
			return nil, fmt.Errorf("day pattern %q: unknown day code %q", s, s[i])
		}
		if p.Contains(d) {
			return nil, fmt.Errorf("day pattern %q: repeated day %q", s, s[i])
		}
		p = append(p, d)
	}
	return p, nil
}

// MustDayPattern is ParseDayPattern for compile-time constants.
func MustDayPattern(s string) DayPattern {
	p, err := ParseDayPattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Contains reports whether the pattern meets on d.
func (p DayPattern) Contains(d time.Weekday) bool {
	for _, day := range p {
		if day == d {
			return true
		}
	}
	return false
}

// Shares reports whether both patterns have at least one weekday in common.
func (p DayPattern) Shares(o DayPattern) bool {
	for _, d := range p {
		if o.Contains(d) {
			return true
		}
	}
	return false
}

func (p DayPattern) String() string {
	var b strings.Builder
	for _, d := range p {
		b.WriteByte(dayLetters[d])
	}
	return b.String()
}

// Slot is one (room, day pattern, start, end) unit of the inventory.
type Slot struct {
	RoomID   string
	RoomType RoomType
	Building string
	Days     DayPattern
	Start    Clock
	End      Clock
}

// Overlaps reports whether two slots in the same room would double-book it.
func (s Slot) Overlaps(o Slot) bool {
	return s.RoomID == o.RoomID && s.Days.Shares(o.Days) && s.Start < o.End && s.End > o.Start
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s %s-%s", s.RoomID, s.Days, s.Start, s.End)
}
