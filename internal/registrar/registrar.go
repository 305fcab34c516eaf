// Package registrar runs one registration cycle end to end: it selects the
// catalog, schedules rooms, generates students, simulates enrollment and
// validates the outcome.
package registrar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/conflict"
	"github.com/rhyrak/go-registrar/internal/csvio"
	"github.com/rhyrak/go-registrar/internal/enrollment"
	"github.com/rhyrak/go-registrar/internal/population"
	"github.com/rhyrak/go-registrar/internal/rng"
	"github.com/rhyrak/go-registrar/internal/scheduler"
	"github.com/rhyrak/go-registrar/pkg/model"
)

// ErrDataIntegrity is returned, wrapped, for every input problem detected
// before allocation starts.
var ErrDataIntegrity = model.ErrDataIntegrity

type Input struct {
	Catalog []*model.CatalogRecord
	Rooms   []*model.Room
}

type Summary struct {
	Sections             int  `json:"sections"`
	Scheduled            int  `json:"scheduled"`
	Unscheduled          int  `json:"unscheduled"`
	Exempt               int  `json:"exempt"`
	Rooms                int  `json:"rooms"`
	Slots                int  `json:"slots"`
	Students             int  `json:"students"`
	ThesisStudents       int  `json:"thesis_students"`
	Enrollments          int  `json:"enrollments"`
	Complete             int  `json:"complete"`
	PartiallyUnfilled    int  `json:"partially_unfilled"`
	AllocationShortfalls int  `json:"allocation_shortfalls"`
	EnrollmentShortfalls int  `json:"enrollment_shortfalls"`
	ThesisFallbacks      int  `json:"thesis_fallbacks"`
	Valid                bool `json:"valid"`
}

type Result struct {
	Sections    []*model.Section
	Students    []*model.Student
	Enrollments []model.Enrollment
	Shortfalls  []model.Shortfall
	Outcome     map[string]enrollment.State
	Summary     Summary
	// Report is the output of scheduler.Validate.
	Report string
}

// Artifacts holds the CSV documents produced by a run.
type Artifacts struct {
	Schedule    []byte
	Enrollments []byte
	Students    []byte
}

// SelectCatalog keeps n records drawn with r, in catalog order. n <= 0 or
// n >= len(records) keeps everything.
func SelectCatalog(records []*model.CatalogRecord, n int, r *rand.Rand) []*model.CatalogRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	picked := r.Perm(len(records))[:n]
	slices.Sort(picked)
	out := make([]*model.CatalogRecord, 0, n)
	for _, i := range picked {
		out = append(out, records[i])
	}
	return out
}

// BuildSections turns validated catalog records into sections numbered
// <course_code>-<n> per course code, in catalog order.
func BuildSections(records []*model.CatalogRecord) ([]*model.Section, error) {
	next := map[string]int{}
	sections := make([]*model.Section, 0, len(records))
	for _, rec := range records {
		comp, ok := model.ParseComponent(rec.Component)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown component %q", ErrDataIntegrity, rec.CourseCode, rec.Component)
		}
		capacity, err := rec.Capacity()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDataIntegrity, rec.CourseCode, err)
		}
		next[rec.CourseCode]++
		id := rec.CourseCode + "-" + strconv.Itoa(next[rec.CourseCode])
		sections = append(sections, model.NewSection(id, rec, comp, capacity))
	}
	return sections, nil
}

func departments(sections []*model.Section) []string {
	var out []string
	for _, s := range sections {
		out = append(out, s.Department)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Run executes one registration cycle. Data integrity problems are returned
// before any allocation happens; shortfalls are reported in the result.
func Run(cfg *config.Config, in Input, log zerolog.Logger) (*Result, error) {
	if err := errors.Join(csvio.ValidateCatalog(in.Catalog), csvio.ValidateRooms(in.Rooms)); err != nil {
		return nil, err
	}

	records := SelectCatalog(in.Catalog, cfg.CatalogSampleSize, rng.New(cfg.CatalogSeed))
	sections, err := BuildSections(records)
	if err != nil {
		return nil, err
	}
	if cfg.Students > 0 && cfg.ThesisSeniors > 0 && !slices.ContainsFunc(sections, func(s *model.Section) bool {
		return s.IsThesis(cfg.ThesisLevel)
	}) {
		return nil, fmt.Errorf("%w: %d thesis students requested but the catalog has no Independent Study at level %d or above",
			ErrDataIntegrity, cfg.ThesisSeniors, cfg.ThesisLevel)
	}

	students, err := population.Generate(departments(sections), population.Options{
		Students:      cfg.Students,
		ThesisSeniors: cfg.ThesisSeniors,
		Mix:           cfg.ClassYearMix,
	}, rng.New(cfg.PopulationSeed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataIntegrity, err)
	}

	log.Info().
		Int("sections", len(sections)).
		Int("rooms", len(in.Rooms)).
		Int("students", len(students)).
		Msg("Starting registration cycle")

	inv := scheduler.BuildInventory(in.Rooms, scheduler.DefaultTemplates())
	slots := inv.Len()
	assignment := scheduler.AssignRooms(sections, inv, rng.New(cfg.RoomSeed), log)

	eng := enrollment.NewEngine(sections, conflict.NewIndex(sections), rng.New(cfg.EnrollmentSeed), enrollment.Options{
		CourseLoad:       cfg.CourseLoad,
		ThesisCourseLoad: cfg.ThesisCourseLoad,
		ThesisLevel:      cfg.ThesisLevel,
		ShoppingListSize: cfg.ShoppingListSize,
	}, log)
	enrolled := eng.Run(students)

	valid, report := scheduler.Validate(sections, students, enrolled.Enrollments, cfg.ThesisLevel)

	res := &Result{
		Sections:    sections,
		Students:    students,
		Enrollments: enrolled.Enrollments,
		Shortfalls:  append(slices.Clone(assignment.Shortfalls), enrolled.Shortfalls...),
		Outcome:     enrolled.Outcome,
		Report:      report,
	}
	res.Summary = summarize(res, assignment, len(in.Rooms), slots, valid)

	ev := log.Info()
	if !valid {
		ev = log.Error()
	}
	ev.Int("scheduled", res.Summary.Scheduled).
		Int("unscheduled", res.Summary.Unscheduled).
		Int("enrollments", res.Summary.Enrollments).
		Int("allocation_shortfalls", res.Summary.AllocationShortfalls).
		Int("enrollment_shortfalls", res.Summary.EnrollmentShortfalls).
		Int("thesis_fallbacks", res.Summary.ThesisFallbacks).
		Bool("valid", valid).
		Msg("Registration cycle finished")

	return res, nil
}

func summarize(res *Result, a *scheduler.Assignment, rooms, slots int, valid bool) Summary {
	counts := model.CountShortfalls(res.Shortfalls)
	s := Summary{
		Sections:             len(res.Sections),
		Scheduled:            a.Scheduled,
		Unscheduled:          a.Unscheduled,
		Exempt:               a.Exempt,
		Rooms:                rooms,
		Slots:                slots,
		Students:             len(res.Students),
		Enrollments:          len(res.Enrollments),
		AllocationShortfalls: counts[model.AllocationShortfall],
		EnrollmentShortfalls: counts[model.EnrollmentShortfall],
		ThesisFallbacks:      counts[model.ThesisPlacementFallback],
		Valid:                valid,
	}
	for _, st := range res.Students {
		if st.Thesis {
			s.ThesisStudents++
		}
		switch res.Outcome[st.ID] {
		case enrollment.Complete:
			s.Complete++
		case enrollment.PartiallyUnfilled:
			s.PartiallyUnfilled++
		}
	}
	return s
}

// Artifacts renders the three CSV documents of the run.
func (r *Result) Artifacts() (*Artifacts, error) {
	var schedule, roster, students bytes.Buffer
	if err := csvio.ExportSchedule(r.Sections, &schedule); err != nil {
		return nil, fmt.Errorf("export schedule: %w", err)
	}
	if err := csvio.ExportEnrollments(r.Enrollments, &roster); err != nil {
		return nil, fmt.Errorf("export enrollments: %w", err)
	}
	if err := csvio.ExportStudents(r.Students, &students); err != nil {
		return nil, fmt.Errorf("export students: %w", err)
	}
	return &Artifacts{Schedule: schedule.Bytes(), Enrollments: roster.Bytes(), Students: students.Bytes()}, nil
}

// Print writes the end-of-run summary.
func (s Summary) Print(out io.Writer) {
	fmt.Fprintf(out, "\nSections:    %d (%d scheduled, %d unscheduled, %d without a meeting)\n", s.Sections, s.Scheduled, s.Unscheduled, s.Exempt)
	fmt.Fprintf(out, "Rooms:       %d (%d slots)\n", s.Rooms, s.Slots)
	fmt.Fprintf(out, "Students:    %d (%d thesis)\n", s.Students, s.ThesisStudents)
	fmt.Fprintf(out, "Enrollments: %d (%d students complete, %d partially unfilled)\n", s.Enrollments, s.Complete, s.PartiallyUnfilled)
	fmt.Fprintf(out, "Shortfalls:  %d allocation, %d enrollment, %d thesis fallback\n", s.AllocationShortfalls, s.EnrollmentShortfalls, s.ThesisFallbacks)
}
