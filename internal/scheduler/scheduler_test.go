package scheduler_test

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhyrak/go-registrar/internal/rng"
	"github.com/rhyrak/go-registrar/internal/scheduler"
	"github.com/rhyrak/go-registrar/pkg/model"
)

func section(id string, comp model.Component, capacity int) *model.Section {
	rec := &model.CatalogRecord{CourseCode: id, Department: "MATH", CourseLevel: 100}
	if comp == model.ComponentIndependentStudy {
		return model.NewSection(id, rec, comp, nil)
	}
	return model.NewSection(id, rec, comp, &capacity)
}

func TestEligibleRoomTypes(t *testing.T) {
	cases := []struct {
		comp     model.Component
		capacity int
		want     []model.RoomType
	}{
		{model.ComponentLab, 120, []model.RoomType{model.RoomLab}},
		{model.ComponentStudio, 12, []model.RoomType{model.RoomBlackBox, model.RoomDanceStudio, model.RoomSeminar}},
		{model.ComponentLecture, 41, []model.RoomType{model.RoomLargeLecture}},
		{model.ComponentLecture, 40, []model.RoomType{model.RoomStandard}},
		{model.ComponentLecture, 17, []model.RoomType{model.RoomStandard}},
		{model.ComponentLecture, 16, []model.RoomType{model.RoomSeminar}},
		{model.ComponentLecture, 5, []model.RoomType{model.RoomSeminar}},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%s-%d", c.comp, c.capacity), func(t *testing.T) {
			assert.Equal(t, c.want, scheduler.EligibleRoomTypes(section("X", c.comp, c.capacity)))
		})
	}
}

func TestBuildInventoryAppliesTemplatesByRoomType(t *testing.T) {
	rooms := []*model.Room{
		{ID: "LAB1", Type: model.RoomLab, Building: "Science"},
		{ID: "SEM1", Type: model.RoomSeminar, Building: "Humanities"},
	}
	inv := scheduler.BuildInventory(rooms, scheduler.DefaultTemplates())
	labs := inv.Eligible([]model.RoomType{model.RoomLab})
	seminars := inv.Eligible([]model.RoomType{model.RoomSeminar})
	assert.Len(t, labs, 10)
	assert.Len(t, seminars, 16)
	assert.Equal(t, inv.Len(), len(labs)+len(seminars))
	for _, s := range inv.Available() {
		if s.RoomType == model.RoomLab {
			assert.Len(t, s.Days, 1, "lab blocks meet on a single day")
		}
	}
}

func TestDefaultTemplatesNeverDoubleBookARoom(t *testing.T) {
	rooms := []*model.Room{
		{ID: "LAB1", Type: model.RoomLab, Building: "Science"},
		{ID: "STD1", Type: model.RoomStandard, Building: "Main"},
	}
	slots := scheduler.BuildInventory(rooms, scheduler.DefaultTemplates()).Available()
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			assert.False(t, slots[i].Overlaps(slots[j]), "%s overlaps %s", slots[i], slots[j])
		}
	}
}

func TestTakeRetiresOverlappingSlotsOfTheSameRoom(t *testing.T) {
	inv := scheduler.NewInventory([]model.Slot{
		{RoomID: "A", RoomType: model.RoomStandard, Days: model.MustDayPattern("MWF"), Start: model.MustClock("10:00"), End: model.MustClock("10:50")},
		{RoomID: "A", RoomType: model.RoomStandard, Days: model.MustDayPattern("MW"), Start: model.MustClock("10:30"), End: model.MustClock("11:45")},
		{RoomID: "A", RoomType: model.RoomStandard, Days: model.MustDayPattern("TR"), Start: model.MustClock("10:30"), End: model.MustClock("11:45")},
		{RoomID: "B", RoomType: model.RoomStandard, Days: model.MustDayPattern("MWF"), Start: model.MustClock("10:00"), End: model.MustClock("10:50")},
	})
	taken := inv.Take(0)
	assert.Equal(t, "A", taken.RoomID)
	left := inv.Available()
	require.Len(t, left, 2)
	assert.Equal(t, "TR", left[0].Days.String())
	assert.Equal(t, "B", left[1].RoomID)
}

func TestAssignRoomsSecondLabIsReportedUnscheduled(t *testing.T) {
	inv := scheduler.NewInventory([]model.Slot{
		{RoomID: "SCI-101", RoomType: model.RoomLab, Building: "Science", Days: model.MustDayPattern("M"), Start: model.MustClock("13:00"), End: model.MustClock("15:30")},
	})
	first := section("CHEM101-1", model.ComponentLab, 20)
	second := section("CHEM101-2", model.ComponentLab, 20)

	res := scheduler.AssignRooms([]*model.Section{first, second}, inv, rng.New(7), zerolog.Nop())

	require.NotNil(t, first.Slot)
	assert.Equal(t, "SCI-101", first.Slot.RoomID)
	assert.Equal(t, "M", first.Slot.Days.String())
	assert.Equal(t, model.MustClock("13:00"), first.Slot.Start)
	assert.Nil(t, second.Slot)
	assert.Equal(t, 1, res.Scheduled)
	assert.Equal(t, 1, res.Unscheduled)
	require.Len(t, res.Shortfalls, 1)
	assert.Equal(t, model.AllocationShortfall, res.Shortfalls[0].Kind)
	assert.Equal(t, "CHEM101-2", res.Shortfalls[0].Subject)
	assert.Equal(t, model.StatusUnscheduled, second.Row().Status)
	assert.Zero(t, inv.Len())
}

func TestAssignRoomsPlacesLargestSectionsFirst(t *testing.T) {
	// One standard classroom slot, two sections that both want it. The
	// larger one is placed first even though it comes later in the catalog.
	inv := scheduler.NewInventory([]model.Slot{
		{RoomID: "MAIN-1", RoomType: model.RoomStandard, Building: "Main", Days: model.MustDayPattern("TR"), Start: model.MustClock("09:30"), End: model.MustClock("10:45")},
	})
	small := section("HIST210-1", model.ComponentLecture, 20)
	large := section("HIST110-1", model.ComponentLecture, 38)

	scheduler.AssignRooms([]*model.Section{small, large}, inv, rng.New(1), zerolog.Nop())

	assert.NotNil(t, large.Slot)
	assert.Nil(t, small.Slot)
}

func TestAssignRoomsSkipsIndependentStudy(t *testing.T) {
	inv := scheduler.NewInventory([]model.Slot{
		{RoomID: "SEM-1", RoomType: model.RoomSeminar, Building: "Hall", Days: model.MustDayPattern("MWF"), Start: model.MustClock("08:00"), End: model.MustClock("08:50")},
	})
	thesis := section("MATH499-1", model.ComponentIndependentStudy, 0)

	res := scheduler.AssignRooms([]*model.Section{thesis}, inv, rng.New(1), zerolog.Nop())

	assert.Nil(t, thesis.Slot)
	assert.Equal(t, 1, res.Exempt)
	assert.Equal(t, 1, inv.Len())
	row := thesis.Row()
	assert.Equal(t, model.NotApplicable, row.Days)
	assert.Equal(t, model.NotApplicable, row.RoomID)
	assert.Equal(t, model.NotApplicable, row.Building)
	assert.Empty(t, row.EnrollmentCap)
}

func assignCampus(seed int64) []*model.Section {
	rooms := []*model.Room{
		{ID: "HALL-1", Type: model.RoomLargeLecture, Building: "Central"},
		{ID: "STD-1", Type: model.RoomStandard, Building: "Main"},
		{ID: "STD-2", Type: model.RoomStandard, Building: "Main"},
		{ID: "SEM-1", Type: model.RoomSeminar, Building: "Hall"},
		{ID: "LAB-1", Type: model.RoomLab, Building: "Science"},
		{ID: "BOX-1", Type: model.RoomBlackBox, Building: "Arts"},
	}
	var sections []*model.Section
	for i := 0; i < 60; i++ {
		comp := model.ComponentLecture
		switch i % 5 {
		case 3:
			comp = model.ComponentLab
		case 4:
			comp = model.ComponentStudio
		}
		sections = append(sections, section(fmt.Sprintf("C%03d-1", i), comp, 8+(i*7)%60))
	}
	scheduler.AssignRooms(sections, scheduler.BuildInventory(rooms, scheduler.DefaultTemplates()), rng.New(seed), zerolog.Nop())
	return sections
}

func TestAssignRoomsIsDeterministicAndCollisionFree(t *testing.T) {
	a := assignCampus(42)
	b := assignCampus(42)
	for i := range a {
		assert.Equal(t, a[i].Row(), b[i].Row())
	}

	valid, msg := scheduler.Validate(a, nil, nil, 400)
	assert.True(t, valid, msg)
	assert.Contains(t, msg, "[  OK]: Classroom collision check.")
	for _, s := range a {
		if s.Slot == nil {
			continue
		}
		assert.Contains(t, scheduler.EligibleRoomTypes(s), s.Slot.RoomType)
	}
}

func TestValidateReportsFailures(t *testing.T) {
	slot := model.Slot{RoomID: "A", RoomType: model.RoomStandard, Days: model.MustDayPattern("MWF"), Start: model.MustClock("10:00"), End: model.MustClock("10:50")}
	x := section("X-1", model.ComponentLecture, 1)
	y := section("Y-1", model.ComponentLecture, 30)
	x.Slot, y.Slot = &slot, &slot
	x.Seats = -1
	thesisStudent := &model.Student{ID: "S0001", Year: model.Senior, Major: "MATH", Thesis: true}
	enrollments := []model.Enrollment{
		{StudentID: "S0001", SectionID: "X-1", Pass: model.PassPrimary},
		{StudentID: "S0001", SectionID: "Y-1", Pass: model.PassPrimary},
		{StudentID: "S0002", SectionID: "X-1", Pass: model.PassPrimary},
	}

	valid, msg := scheduler.Validate([]*model.Section{x, y}, []*model.Student{thesisStudent}, enrollments, 400)

	assert.False(t, valid)
	assert.Contains(t, msg, "[FAIL]: Classroom collision check.")
	assert.Contains(t, msg, "[FAIL]: Seat capacity check.")
	assert.Contains(t, msg, "[FAIL]: Student schedule conflict check.")
	assert.Contains(t, msg, "[FAIL]: Thesis guarantee check.")
}
