package conflict_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhyrak/go-registrar/internal/conflict"
	"github.com/rhyrak/go-registrar/pkg/model"
)

func scheduled(id, days, start, end string) *model.Section {
	capacity := 30
	return &model.Section{
		ID:        id,
		Component: model.ComponentLecture,
		Capacity:  &capacity,
		Seats:     capacity,
		Slot: &model.Slot{
			RoomID: "R-" + id,
			Days:   model.MustDayPattern(days),
			Start:  model.MustClock(start),
			End:    model.MustClock(end),
		},
	}
}

func TestExplodeOneRowPerWeekday(t *testing.T) {
	rows := conflict.Explode(scheduled("A", "MWF", "10:00", "10:50"))
	require.Len(t, rows, 3)
	assert.Equal(t, time.Monday, rows[0].Day)
	assert.Equal(t, time.Wednesday, rows[1].Day)
	assert.Equal(t, time.Friday, rows[2].Day)
	for _, r := range rows {
		assert.Equal(t, "A", r.SectionID)
		assert.Equal(t, model.MustClock("10:00"), r.Start)
		assert.Equal(t, model.MustClock("10:50"), r.End)
	}
}

func TestExplodeSkipsNonMeetingSections(t *testing.T) {
	unscheduled := &model.Section{ID: "U", Component: model.ComponentLecture}
	thesis := &model.Section{ID: "T", Component: model.ComponentIndependentStudy}
	assert.Empty(t, conflict.Explode(unscheduled))
	assert.Empty(t, conflict.Explode(thesis))

	ix := conflict.NewIndex([]*model.Section{unscheduled, thesis, scheduled("A", "TR", "09:30", "10:45")})
	assert.Equal(t, 1, ix.Len())
	assert.False(t, ix.Conflicts("U", ix.Intervals("A")))
	assert.False(t, ix.Conflicts("T", ix.Intervals("A")))
}

func TestIndexConflicts(t *testing.T) {
	a := scheduled("A", "MWF", "10:00", "10:50")
	c := scheduled("C", "W", "10:30", "11:30")
	backToBack := scheduled("B", "MWF", "10:50", "11:40")
	otherDays := scheduled("D", "TR", "10:00", "11:15")
	ix := conflict.NewIndex([]*model.Section{a, c, backToBack, otherDays})

	assert.True(t, ix.Conflicts("C", ix.Intervals("A")), "shared Wednesday overlaps")
	assert.True(t, ix.Conflicts("A", ix.Intervals("C")), "overlap is symmetric")
	assert.False(t, ix.Conflicts("B", ix.Intervals("A")), "back-to-back does not conflict")
	assert.False(t, ix.Conflicts("D", ix.Intervals("A")), "no shared weekday")
}

func TestScheduleAccumulates(t *testing.T) {
	a := scheduled("A", "MWF", "10:00", "10:50")
	c := scheduled("C", "W", "10:00", "10:50")
	d := scheduled("D", "TR", "10:00", "11:15")
	e := scheduled("E", "R", "11:00", "12:00")
	ix := conflict.NewIndex([]*model.Section{a, c, d, e})

	s := ix.NewSchedule()
	assert.False(t, s.Conflicts("A"))
	s.Add("A")
	assert.True(t, s.Conflicts("C"))
	assert.False(t, s.Conflicts("D"))
	s.Add("D")
	assert.True(t, s.Conflicts("E"))
	assert.Len(t, s.Intervals(), 5)
}
