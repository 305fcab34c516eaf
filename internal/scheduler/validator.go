package scheduler

import (
	"fmt"
	"strings"

	"github.com/rhyrak/go-registrar/internal/conflict"
	"github.com/rhyrak/go-registrar/pkg/model"
)

// Validate checks a finished run for room collisions, overbooked sections,
// clashing student schedules and thesis students without a thesis section.
// Returns false and a message for invalid runs. Unscheduled sections are
// listed but do not invalidate the run.
func Validate(sections []*model.Section, students []*model.Student, enrollments []model.Enrollment, thesisLevel int) (bool, string) {
	var message strings.Builder
	valid := true

	check := func(name string, ok bool, details []string) {
		if ok {
			fmt.Fprintf(&message, "[  OK]: %s\n", name)
			return
		}
		valid = false
		fmt.Fprintf(&message, "[FAIL]: %s\n", name)
		for _, d := range details {
			fmt.Fprintf(&message, "    %s\n", d)
		}
	}

	collisions := roomCollisions(sections)
	check("Classroom collision check.", len(collisions) == 0, collisions)

	overbooked := overbookedSections(sections, enrollments)
	check("Seat capacity check.", len(overbooked) == 0, overbooked)

	clashes := studentClashes(sections, enrollments)
	check("Student schedule conflict check.", len(clashes) == 0, clashes)

	missing := missingTheses(sections, students, enrollments, thesisLevel)
	check("Thesis guarantee check.", len(missing) == 0, missing)

	var unscheduled []*model.Section
	for _, s := range sections {
		if s.NeedsRoom() && !s.Scheduled() {
			unscheduled = append(unscheduled, s)
		}
	}
	if len(unscheduled) == 0 {
		message.WriteString("[  OK]: Section has room check.\n")
	} else {
		fmt.Fprintf(&message, "[WARN]: Section has room check.\n- There are %d unscheduled sections:\n", len(unscheduled))
		for _, s := range unscheduled {
			fmt.Fprintf(&message, "    %s %s %s %d\n", s.ID, s.Department, s.Component, s.Cap())
		}
	}

	return valid, message.String()
}

func roomCollisions(sections []*model.Section) []string {
	var out []string
	byRoom := map[string][]*model.Section{}
	var rooms []string
	for _, s := range sections {
		if s.Slot == nil {
			continue
		}
		if _, seen := byRoom[s.Slot.RoomID]; !seen {
			rooms = append(rooms, s.Slot.RoomID)
		}
		byRoom[s.Slot.RoomID] = append(byRoom[s.Slot.RoomID], s)
	}
	for _, room := range rooms {
		list := byRoom[room]
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				if list[i].Slot.Overlaps(*list[j].Slot) {
					out = append(out, fmt.Sprintf("- Room %s assigned to %s and %s at the same time", room, list[i].ID, list[j].ID))
				}
			}
		}
	}
	return out
}

func overbookedSections(sections []*model.Section, enrollments []model.Enrollment) []string {
	taken := map[string]int{}
	for _, e := range enrollments {
		if e.Pass != model.PassThesis {
			taken[e.SectionID]++
		}
	}
	var out []string
	for _, s := range sections {
		if s.Uncapped() {
			continue
		}
		if s.Seats < 0 || taken[s.ID] > s.Cap() {
			out = append(out, fmt.Sprintf("- Section %s has %d enrollments for %d seats (%d remaining)", s.ID, taken[s.ID], s.Cap(), s.Seats))
		}
	}
	return out
}

func studentClashes(sections []*model.Section, enrollments []model.Enrollment) []string {
	ix := conflict.NewIndex(sections)
	schedules := map[string]*conflict.Schedule{}
	var out []string
	for _, e := range enrollments {
		sch, ok := schedules[e.StudentID]
		if !ok {
			sch = ix.NewSchedule()
			schedules[e.StudentID] = sch
		}
		if sch.Conflicts(e.SectionID) {
			out = append(out, fmt.Sprintf("- Student %s has a clash involving %s", e.StudentID, e.SectionID))
		}
		sch.Add(e.SectionID)
	}
	return out
}

func missingTheses(sections []*model.Section, students []*model.Student, enrollments []model.Enrollment, thesisLevel int) []string {
	var thesisSections []string
	for _, s := range sections {
		if s.IsThesis(thesisLevel) {
			thesisSections = append(thesisSections, s.ID)
		}
	}
	hasThesis := map[string]bool{}
	for _, e := range enrollments {
		if contains(thesisSections, e.SectionID) {
			hasThesis[e.StudentID] = true
		}
	}
	var out []string
	for _, st := range students {
		if st.Thesis && !hasThesis[st.ID] {
			out = append(out, fmt.Sprintf("- Thesis student %s (%s) has no thesis section", st.ID, st.Major))
		}
	}
	return out
}
