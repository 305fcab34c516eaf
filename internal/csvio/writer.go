package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/rhyrak/go-registrar/pkg/model"
)

// Artifact file names written by ExportAll.
const (
	ScheduleFile    = "schedule.csv"
	EnrollmentsFile = "enrollments.csv"
	StudentsFile    = "students.csv"
)

func marshal(rows any, out io.Writer) error {
	w := gocsv.NewSafeCSVWriter(csv.NewWriter(out))
	if err := gocsv.MarshalCSV(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ExportSchedule writes one row per section in catalog order.
func ExportSchedule(sections []*model.Section, out io.Writer) error {
	rows := make([]*model.ScheduleCSVRow, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, s.Row())
	}
	return marshal(&rows, out)
}

// ExportEnrollments writes the roster in insertion order.
func ExportEnrollments(enrollments []model.Enrollment, out io.Writer) error {
	rows := make([]*model.EnrollmentCSVRow, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, e.Row())
	}
	return marshal(&rows, out)
}

// ExportStudents writes the generated population.
func ExportStudents(students []*model.Student, out io.Writer) error {
	rows := make([]*model.StudentCSVRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, s.Row())
	}
	return marshal(&rows, out)
}

// WriteFile replaces path with whatever write produces.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportAll writes the three artifacts into dir and returns their paths.
func ExportAll(dir string, sections []*model.Section, enrollments []model.Enrollment, students []*model.Student) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{ScheduleFile, func(w io.Writer) error { return ExportSchedule(sections, w) }},
		{EnrollmentsFile, func(w io.Writer) error { return ExportEnrollments(enrollments, w) }},
		{StudentsFile, func(w io.Writer) error { return ExportStudents(students, w) }},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := WriteFile(path, f.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// PrintSchedule prints the weekly schedule grouped by department.
// Sections without a meeting are listed last within their department.
func PrintSchedule(out io.Writer, sections []*model.Section) {
	sorted := slices.Clone(sections)
	slices.SortStableFunc(sorted, func(a, b *model.Section) int {
		if dep := strings.Compare(a.Department, b.Department); dep != 0 {
			return dep
		}
		if a.Scheduled() != b.Scheduled() {
			if a.Scheduled() {
				return -1
			}
			return 1
		}
		if a.Scheduled() {
			if day := int(a.Slot.Days[0]) - int(b.Slot.Days[0]); day != 0 {
				return day
			}
			if t := int(a.Slot.Start) - int(b.Slot.Start); t != 0 {
				return t
			}
		}
		return strings.Compare(a.ID, b.ID)
	})

	seen := map[string]bool{}
	for _, s := range sorted {
		if !seen[s.Department] {
			seen[s.Department] = true
			fmt.Fprintf(out, "\n%s %s %s\n", strings.Repeat("-", (32-len(s.Department))/2), s.Department, strings.Repeat("-", (33-len(s.Department))/2))
		}
		row := s.Row()
		fmt.Fprintf(out, "%-5s %5s-%-5s  %-14s %-18s %s\n", row.Days, row.StartTime, row.EndTime, s.ID, row.Component, row.RoomID)
	}
	fmt.Fprintf(out, "Printed rows: %d\n", len(sorted))
}
