package enrollment

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhyrak/go-registrar/internal/conflict"
	"github.com/rhyrak/go-registrar/internal/rng"
	"github.com/rhyrak/go-registrar/pkg/model"
)

func fullSection() *model.Section {
	capacity := 1
	rec := &model.CatalogRecord{CourseCode: "MATH210", Department: "MATH", CourseLevel: 200}
	s := model.NewSection("MATH210-1", rec, model.ComponentLecture, &capacity)
	s.Slot = &model.Slot{
		RoomID:   "MAIN-1",
		RoomType: model.RoomStandard,
		Days:     model.MustDayPattern("MWF"),
		Start:    model.MustClock("10:00"),
		End:      model.MustClock("10:50"),
	}
	s.Seats = 0
	return s
}

func TestEnrollSkipsFullSection(t *testing.T) {
	s := fullSection()
	sections := []*model.Section{s}
	e := NewEngine(sections, conflict.NewIndex(sections), rng.New(1), Options{CourseLoad: 4}, zerolog.Nop())
	st := &model.Student{ID: "S0001", Year: model.Senior, Major: "MATH"}

	require.NotPanics(t, func() {
		assert.False(t, e.enroll(st, s, model.PassBackfill))
	})
	assert.Empty(t, e.Enrollments())
	assert.Equal(t, 0, e.counts[st.ID])
	assert.False(t, e.courses[st.ID]["MATH210"])
	assert.Equal(t, 0, s.Seats)
	assert.False(t, e.shoppable(st, s))
}

func TestStateFollowsTheStudentThroughEveryPass(t *testing.T) {
	s := fullSection()
	sections := []*model.Section{s}
	e := NewEngine(sections, conflict.NewIndex(sections), rng.New(1), Options{CourseLoad: 1}, zerolog.Nop())
	st := &model.Student{ID: "S0001", Year: model.Junior, Major: "MATH"}
	ordered := []*model.Student{st}

	assert.Equal(t, Unenrolled, e.State(st.ID))
	e.PrimaryPass(ordered)
	assert.Equal(t, NeedsBackfill, e.State(st.ID))
	e.Backfill(ordered)
	assert.Equal(t, PartiallyUnfilled, e.State(st.ID))
	e.AssignTheses(ordered)
	assert.Equal(t, Final, e.State(st.ID))
}
