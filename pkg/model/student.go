package model

import (
	"fmt"
	"strconv"
)

type ClassYear int

const (
	FirstYear ClassYear = iota + 1
	Sophomore
	Junior
	Senior
)

// ClassYears in registration priority order, most senior first.
var ClassYears = []ClassYear{Senior, Junior, Sophomore, FirstYear}

func (y ClassYear) String() string {
	switch y {
	case FirstYear:
		return "FirstYear"
	case Sophomore:
		return "Sophomore"
	case Junior:
		return "Junior"
	case Senior:
		return "Senior"
	}
	return "ClassYear(" + strconv.Itoa(int(y)) + ")"
}

type Student struct {
	ID      string
	Year    ClassYear
	Major   string
	Persona string
	Thesis  bool
}

// TargetLoad is the number of regular sections the student shops for.
// Thesis students give one course up for their thesis section.
func (s *Student) TargetLoad(courseLoad, thesisCourseLoad int) int {
	if s.Thesis {
		return thesisCourseLoad
	}
	return courseLoad
}

type StudentCSVRow struct {
	StudentID string `csv:"student_id"`
	ClassYear string `csv:"class_year"`
	Major     string `csv:"major"`
	Persona   string `csv:"persona"`
	Thesis    bool   `csv:"thesis"`
}

func (s *Student) Row() *StudentCSVRow {
	return &StudentCSVRow{
		StudentID: s.ID,
		ClassYear: s.Year.String(),
		Major:     s.Major,
		Persona:   s.Persona,
		Thesis:    s.Thesis,
	}
}

// StudentID formats the n-th generated student identifier, zero padded to
// width so that lexical order equals numeric order.
func StudentID(n, width int) string {
	return fmt.Sprintf("S%0*d", width, n)
}
