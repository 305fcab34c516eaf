package model

import (
	"fmt"
	"strconv"
	"strings"
)

type Component string

const (
	ComponentLecture          Component = "Lecture"
	ComponentLab              Component = "Lab"
	ComponentStudio           Component = "Studio"
	ComponentIndependentStudy Component = "Independent Study"
)

// ParseComponent accepts the catalog spellings of a component type.
func ParseComponent(s string) (Component, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), "")) {
	case "lecture", "lec":
		return ComponentLecture, true
	case "lab", "laboratory":
		return ComponentLab, true
	case "studio":
		return ComponentStudio, true
	case "independentstudy", "ind":
		return ComponentIndependentStudy, true
	}
	return "", false
}

// CatalogRecord is one row of the section catalog handed over by the
// catalog-building collaborator.
type CatalogRecord struct {
	CourseCode    string `csv:"course_code" validate:"required"`
	Department    string `csv:"department" validate:"required"`
	CourseLevel   int    `csv:"course_level" validate:"gt=0"`
	Component     string `csv:"component" validate:"required,component"`
	EnrollmentCap string `csv:"enrollment_cap"`
}

// Capacity parses EnrollmentCap. Independent Study rows may leave it empty
// (uncapped); every other row needs a positive integer.
func (r *CatalogRecord) Capacity() (*int, error) {
	raw := strings.TrimSpace(r.EnrollmentCap)
	comp, _ := ParseComponent(r.Component)
	if raw == "" || strings.EqualFold(raw, NotApplicable) {
		if comp == ComponentIndependentStudy {
			return nil, nil
		}
		return nil, fmt.Errorf("enrollment cap is required for %s sections", r.Component)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("enrollment cap %q is not a number", raw)
	}
	if n <= 0 {
		return nil, fmt.Errorf("enrollment cap must be positive, got %d", n)
	}
	return &n, nil
}

type Section struct {
	ID         string
	CourseCode string
	Department string
	Level      int
	Component  Component
	Capacity   *int  // nil means uncapped
	Seats      int   // remaining seats, meaningless when uncapped
	Slot       *Slot // nil until scheduled
}

// NewSection builds a section with a full seat counter.
func NewSection(id string, rec *CatalogRecord, component Component, capacity *int) *Section {
	s := &Section{
		ID:         id,
		CourseCode: rec.CourseCode,
		Department: rec.Department,
		Level:      rec.CourseLevel,
		Component:  component,
		Capacity:   capacity,
	}
	if capacity != nil {
		s.Seats = *capacity
	}
	return s
}

// NeedsRoom reports whether the section has a physical meeting.
func (s *Section) NeedsRoom() bool {
	return s.Component != ComponentIndependentStudy
}

func (s *Section) Uncapped() bool {
	return s.Capacity == nil
}

func (s *Section) Scheduled() bool {
	return s.Slot != nil
}

// Cap returns the capacity, 0 when uncapped.
func (s *Section) Cap() int {
	if s.Capacity == nil {
		return 0
	}
	return *s.Capacity
}

// HasSeat reports whether one more student fits.
func (s *Section) HasSeat() bool {
	return s.Uncapped() || s.Seats > 0
}

// TakeSeat decrements the seat counter. It refuses to go below zero.
func (s *Section) TakeSeat() bool {
	if s.Uncapped() {
		return true
	}
	if s.Seats <= 0 {
		return false
	}
	s.Seats--
	return true
}

// IsThesis reports whether the section can host a senior thesis: an
// Independent Study at or above the thesis level.
func (s *Section) IsThesis(thesisLevel int) bool {
	return s.Component == ComponentIndependentStudy && s.Level >= thesisLevel
}
