// Package enrollment simulates students shopping for sections once the
// schedule is fixed: a priority-ordered greedy pass, a backfill pass for
// students left short, and a pass that guarantees every thesis senior a
// thesis section.
package enrollment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rhyrak/go-registrar/internal/conflict"
	"github.com/rhyrak/go-registrar/internal/rng"
	"github.com/rhyrak/go-registrar/pkg/model"
)

type State int

const (
	Unenrolled State = iota
	ShoppingPass1
	Complete
	NeedsBackfill
	BackfillPass2
	PartiallyUnfilled
	ThesisAssignment
	Final
)

func (s State) String() string {
	switch s {
	case Unenrolled:
		return "Unenrolled"
	case ShoppingPass1:
		return "ShoppingPass1"
	case Complete:
		return "Complete"
	case NeedsBackfill:
		return "NeedsBackfill"
	case BackfillPass2:
		return "BackfillPass2"
	case PartiallyUnfilled:
		return "PartiallyUnfilled"
	case ThesisAssignment:
		return "ThesisAssignment"
	case Final:
		return "Final"
	}
	return "Unknown"
}

type Options struct {
	CourseLoad       int
	ThesisCourseLoad int
	ThesisLevel      int
	// ShoppingListSize caps how many open sections a student looks at in
	// Pass 1. Zero means every open section, which leaves Pass 2 only the
	// students whose whole pool conflicts or filled up. The configured
	// default of 12 is what gives backfill regular work.
	ShoppingListSize int
}

// Result is the outcome of a full simulation.
type Result struct {
	Enrollments []model.Enrollment
	Shortfalls  []model.Shortfall
	// Outcome is Complete or PartiallyUnfilled for every student, as left by Pass 2.
	Outcome map[string]State
}

// Engine owns the mutable state of one enrollment simulation. It is not
// safe for concurrent use.
type Engine struct {
	sections []*model.Section
	index    *conflict.Index
	rand     *rand.Rand
	opts     Options
	log      zerolog.Logger

	enrollments []model.Enrollment
	shortfalls  []model.Shortfall
	state       map[string]State
	schedules   map[string]*conflict.Schedule
	courses     map[string]map[string]bool // student -> course codes taken
	counts      map[string]int             // regular sections per student
}

func NewEngine(sections []*model.Section, index *conflict.Index, r *rand.Rand, opts Options, log zerolog.Logger) *Engine {
	return &Engine{
		sections:  sections,
		index:     index,
		rand:      r,
		opts:      opts,
		log:       log.With().Str("component", "enrollment").Logger(),
		state:     map[string]State{},
		schedules: map[string]*conflict.Schedule{},
		courses:   map[string]map[string]bool{},
		counts:    map[string]int{},
	}
}

// PriorityOrder sorts students in model.ClassYears order, ties broken by
// student ID. The input slice is left untouched.
func PriorityOrder(students []*model.Student) []*model.Student {
	rank := make(map[model.ClassYear]int, len(model.ClassYears))
	for i, y := range model.ClassYears {
		rank[y] = i
	}
	yearRank := func(y model.ClassYear) int {
		if r, ok := rank[y]; ok {
			return r
		}
		return len(model.ClassYears)
	}

	ordered := make([]*model.Student, len(students))
	copy(ordered, students)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := yearRank(ordered[i].Year), yearRank(ordered[j].Year)
		if ri != rj {
			return ri < rj
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// Run drives every student through all three passes.
func (e *Engine) Run(students []*model.Student) *Result {
	ordered := PriorityOrder(students)
	for _, st := range ordered {
		e.state[st.ID] = Unenrolled
	}

	e.PrimaryPass(ordered)
	e.Backfill(ordered)

	outcome := make(map[string]State, len(ordered))
	for _, st := range ordered {
		outcome[st.ID] = e.state[st.ID]
	}

	e.AssignTheses(ordered)

	counts := model.CountShortfalls(e.shortfalls)
	e.log.Info().
		Int("students", len(ordered)).
		Int("enrollments", len(e.enrollments)).
		Int("enrollment_shortfalls", counts[model.EnrollmentShortfall]).
		Int("thesis_fallbacks", counts[model.ThesisPlacementFallback]).
		Msg("Enrollment simulation finished")

	return &Result{Enrollments: e.enrollments, Shortfalls: e.shortfalls, Outcome: outcome}
}

// State returns the current state of a student.
func (e *Engine) State(studentID string) State {
	return e.state[studentID]
}

// Enrollments returns the enrollments made so far, in insertion order.
func (e *Engine) Enrollments() []model.Enrollment {
	return e.enrollments
}

func (e *Engine) target(st *model.Student) int {
	return st.TargetLoad(e.opts.CourseLoad, e.opts.ThesisCourseLoad)
}

// shoppable reports whether a section can be offered during Pass 1 and Pass 2:
// it meets somewhere, has a seat left and is not a course the student already takes.
func (e *Engine) shoppable(st *model.Student, s *model.Section) bool {
	return s.Scheduled() && !s.Uncapped() && s.HasSeat() && !e.courses[st.ID][s.CourseCode]
}

func (e *Engine) schedule(st *model.Student) *conflict.Schedule {
	sch, ok := e.schedules[st.ID]
	if !ok {
		sch = e.index.NewSchedule()
		e.schedules[st.ID] = sch
	}
	return sch
}

// enroll records the enrollment. Regular passes take a seat first and
// report false, recording nothing, when the section is full.
func (e *Engine) enroll(st *model.Student, s *model.Section, pass model.Pass) bool {
	if pass != model.PassThesis && !s.TakeSeat() {
		e.log.Error().Str("student", st.ID).Str("section", s.ID).Msg("Section has no seat left, skipped")
		return false
	}
	e.enrollments = append(e.enrollments, model.Enrollment{StudentID: st.ID, SectionID: s.ID, Pass: pass})
	if e.courses[st.ID] == nil {
		e.courses[st.ID] = map[string]bool{}
	}
	e.courses[st.ID][s.CourseCode] = true
	e.schedule(st).Add(s.ID)
	if pass != model.PassThesis {
		e.counts[st.ID]++
	}
	return true
}

// PrimaryPass lets each student, in priority order, draw a shuffled shopping
// list of open sections and take the first ones that fit their running
// schedule.
func (e *Engine) PrimaryPass(ordered []*model.Student) {
	for _, st := range ordered {
		e.state[st.ID] = ShoppingPass1
		target := e.target(st)

		var candidates []*model.Section
		for _, s := range e.sections {
			if e.shoppable(st, s) {
				candidates = append(candidates, s)
			}
		}
		rng.Shuffle(e.rand, candidates)
		if n := e.opts.ShoppingListSize; n > 0 && len(candidates) > n {
			candidates = candidates[:n]
		}

		sch := e.schedule(st)
		for _, s := range candidates {
			if e.counts[st.ID] >= target {
				break
			}
			if !e.shoppable(st, s) || sch.Conflicts(s.ID) {
				continue
			}
			e.enroll(st, s, model.PassPrimary)
		}

		if e.counts[st.ID] >= target {
			e.state[st.ID] = Complete
		} else {
			e.state[st.ID] = NeedsBackfill
		}
	}
}

// Backfill tops up students left below target. The open pool is recomputed
// on every iteration because earlier students keep taking seats.
func (e *Engine) Backfill(ordered []*model.Student) {
	for _, st := range ordered {
		if e.state[st.ID] != NeedsBackfill {
			continue
		}
		e.state[st.ID] = BackfillPass2
		target := e.target(st)
		sch := e.rebuildSchedule(st)

		for e.counts[st.ID] < target {
			var valid []*model.Section
			for _, s := range e.sections {
				if e.shoppable(st, s) && !sch.Conflicts(s.ID) {
					valid = append(valid, s)
				}
			}
			if len(valid) == 0 {
				break
			}
			e.enroll(st, rng.Pick(e.rand, valid), model.PassBackfill)
		}

		if e.counts[st.ID] >= target {
			e.state[st.ID] = Complete
			continue
		}
		e.state[st.ID] = PartiallyUnfilled
		e.shortfalls = append(e.shortfalls, model.Shortfall{
			Kind:    model.EnrollmentShortfall,
			Subject: st.ID,
			Detail:  shortBy(e.counts[st.ID], target),
		})
		e.log.Warn().
			Str("student", st.ID).
			Str("class_year", st.Year.String()).
			Int("enrolled", e.counts[st.ID]).
			Int("target", target).
			Msg("No conflict-free seat left, student stays under-enrolled")
	}
}

func shortBy(enrolled, target int) string {
	return fmt.Sprintf("enrolled in %d of %d sections", enrolled, target)
}

// rebuildSchedule reconstructs a student's schedule from their enrollments.
func (e *Engine) rebuildSchedule(st *model.Student) *conflict.Schedule {
	sch := e.index.NewSchedule()
	for _, en := range e.enrollments {
		if en.StudentID == st.ID {
			sch.Add(en.SectionID)
		}
	}
	e.schedules[st.ID] = sch
	return sch
}

// AssignTheses places every thesis student in exactly one thesis section of
// their major, ignoring seat limits. Students whose major offers none get a
// thesis section from any department; that placement is flagged.
func (e *Engine) AssignTheses(ordered []*model.Student) {
	var all []*model.Section
	byDept := map[string][]*model.Section{}
	for _, s := range e.sections {
		if s.IsThesis(e.opts.ThesisLevel) {
			all = append(all, s)
			byDept[s.Department] = append(byDept[s.Department], s)
		}
	}

	for _, st := range ordered {
		if !st.Thesis {
			e.state[st.ID] = Final
			continue
		}
		e.state[st.ID] = ThesisAssignment
		if len(all) == 0 {
			// Checked before the run starts; nothing can be placed.
			e.log.Error().Str("student", st.ID).Msg("No thesis section exists in the catalog")
			e.state[st.ID] = Final
			continue
		}

		if eligible := byDept[st.Major]; len(eligible) > 0 {
			e.enroll(st, rng.Pick(e.rand, eligible), model.PassThesis)
		} else {
			s := rng.Pick(e.rand, all)
			e.enroll(st, s, model.PassThesis)
			e.shortfalls = append(e.shortfalls, model.Shortfall{
				Kind:    model.ThesisPlacementFallback,
				Subject: st.ID,
				Detail:  "major " + st.Major + " has no thesis section, placed in " + s.ID,
			})
			e.log.Warn().
				Str("student", st.ID).
				Str("major", st.Major).
				Str("section", s.ID).
				Str("section_department", s.Department).
				Msg("Thesis placed outside the student's major")
		}
		e.state[st.ID] = Final
	}
}
