// Package conflict answers "does this section clash with that schedule?"
// questions day by day. A section meeting MWF is exploded into three
// intervals so that it can be compared with a course that only meets on
// Wednesdays.
package conflict

import (
	"time"

	"github.com/rhyrak/go-registrar/pkg/model"
)

// Interval is a section's meeting reduced to a single weekday.
type Interval struct {
	SectionID string
	Day       time.Weekday
	Start     model.Clock
	End       model.Clock
}

// Overlaps is the half-open [start,end) test. Back-to-back meetings do not overlap.
func (a Interval) Overlaps(b Interval) bool {
	return a.Day == b.Day && a.Start < b.End && a.End > b.Start
}

// Explode returns one interval per weekday the section meets. Unscheduled
// and Independent Study sections have none.
func Explode(s *model.Section) []Interval {
	if s.Slot == nil || !s.NeedsRoom() {
		return nil
	}
	out := make([]Interval, 0, len(s.Slot.Days))
	for _, d := range s.Slot.Days {
		out = append(out, Interval{SectionID: s.ID, Day: d, Start: s.Slot.Start, End: s.Slot.End})
	}
	return out
}

// Index maps section IDs to their per-day intervals.
type Index struct {
	bySection map[string][]Interval
}

// NewIndex explodes every scheduled section once.
func NewIndex(sections []*model.Section) *Index {
	ix := &Index{bySection: make(map[string][]Interval, len(sections))}
	for _, s := range sections {
		if rows := Explode(s); len(rows) > 0 {
			ix.bySection[s.ID] = rows
		}
	}
	return ix
}

// Intervals returns the intervals of a section, nil if it never meets.
func (ix *Index) Intervals(sectionID string) []Interval {
	return ix.bySection[sectionID]
}

// Len is the number of sections that contribute at least one interval.
func (ix *Index) Len() int {
	return len(ix.bySection)
}

// Conflicts reports whether the candidate section overlaps any interval of existing.
func (ix *Index) Conflicts(candidate string, existing []Interval) bool {
	for _, c := range ix.bySection[candidate] {
		for _, e := range existing {
			if c.Overlaps(e) {
				return true
			}
		}
	}
	return false
}

// Schedule is a student's running set of intervals, bucketed by weekday.
type Schedule struct {
	index *Index
	byDay map[time.Weekday][]Interval
}

// NewSchedule returns an empty schedule bound to the index.
func (ix *Index) NewSchedule() *Schedule {
	return &Schedule{index: ix, byDay: make(map[time.Weekday][]Interval)}
}

// Add extends the schedule with a section's intervals.
func (s *Schedule) Add(sectionID string) {
	for _, iv := range s.index.Intervals(sectionID) {
		s.byDay[iv.Day] = append(s.byDay[iv.Day], iv)
	}
}

// Conflicts reports whether the section clashes with anything already in the schedule.
func (s *Schedule) Conflicts(sectionID string) bool {
	for _, c := range s.index.Intervals(sectionID) {
		for _, e := range s.byDay[c.Day] {
			if c.Overlaps(e) {
				return true
			}
		}
	}
	return false
}

// Intervals flattens the schedule in weekday order.
func (s *Schedule) Intervals() []Interval {
	var out []Interval
	for d := time.Sunday; d <= time.Saturday; d++ {
		out = append(out, s.byDay[d]...)
	}
	return out
}
