package model

import "strconv"

// NotApplicable fills the room/day/time fields of sections without a slot.
// The status column tells exempt and unscheduled sections apart.
const NotApplicable = "N/A"

// Section placement status written to the schedule artifact.
const (
	StatusScheduled   = "scheduled"
	StatusUnscheduled = "unscheduled"
	StatusExempt      = "not_applicable"
)

type ScheduleCSVRow struct {
	SectionID     string `csv:"section_id"`
	Department    string `csv:"department"`
	Component     string `csv:"component"`
	EnrollmentCap string `csv:"enrollment_cap"`
	Days          string `csv:"days"`
	StartTime     string `csv:"start_time"`
	EndTime       string `csv:"end_time"`
	RoomID        string `csv:"room_id"`
	RoomType      string `csv:"room_type"`
	Building      string `csv:"building"`
	Status        string `csv:"status"`
}

// Row formats a section for the schedule artifact.
func (s *Section) Row() *ScheduleCSVRow {
	row := &ScheduleCSVRow{
		SectionID:  s.ID,
		Department: s.Department,
		Component:  string(s.Component),
	}
	if s.Capacity != nil {
		row.EnrollmentCap = strconv.Itoa(*s.Capacity)
	}
	if s.Slot == nil {
		row.Days, row.StartTime, row.EndTime = NotApplicable, NotApplicable, NotApplicable
		row.RoomID, row.RoomType, row.Building = NotApplicable, NotApplicable, NotApplicable
		row.Status = StatusUnscheduled
		if !s.NeedsRoom() {
			row.Status = StatusExempt
		}
		return row
	}
	row.Days = s.Slot.Days.String()
	row.StartTime = s.Slot.Start.String()
	row.EndTime = s.Slot.End.String()
	row.RoomID = s.Slot.RoomID
	row.RoomType = string(s.Slot.RoomType)
	row.Building = s.Slot.Building
	row.Status = StatusScheduled
	return row
}
