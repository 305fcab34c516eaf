// Package population generates the synthetic student body of a run.
package population

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strconv"

	"github.com/rhyrak/go-registrar/internal/rng"
	"github.com/rhyrak/go-registrar/pkg/model"
)

var (
	// ErrNoMajors indicates the catalog offers no department to major in.
	ErrNoMajors = errors.New("population: no departments to draw majors from")
	// ErrTooManyThesis indicates more thesis students than seniors were requested.
	ErrTooManyThesis = errors.New("population: more thesis students than seniors")
	// ErrBadMix indicates a class-year mix that is not four non-negative shares.
	ErrBadMix = errors.New("population: class-year mix needs four non-negative shares with a positive sum")
)

// DefaultPersonas are downstream-only tags; no allocation logic reads them.
var DefaultPersonas = []string{"Explorer", "Specialist", "Pre-Professional", "Undecided", "Double-Major"}

type Options struct {
	Students      int
	ThesisSeniors int
	// Mix holds the FirstYear, Sophomore, Junior, Senior shares.
	Mix      []float64
	Personas []string
}

// YearCounts splits n students by the mix. Shares are floored and the
// remainder goes to the first-year class.
func YearCounts(n int, mix []float64) (map[model.ClassYear]int, error) {
	if len(mix) != 4 {
		return nil, ErrBadMix
	}
	var total float64
	for _, m := range mix {
		if m < 0 {
			return nil, ErrBadMix
		}
		total += m
	}
	if total <= 0 {
		return nil, ErrBadMix
	}
	years := []model.ClassYear{model.FirstYear, model.Sophomore, model.Junior, model.Senior}
	counts := map[model.ClassYear]int{}
	assigned := 0
	for i, y := range years {
		counts[y] = int(float64(n) * mix[i] / total)
		assigned += counts[y]
	}
	counts[model.FirstYear] += n - assigned
	return counts, nil
}

// Generate builds the student body. Class years are shuffled across IDs,
// majors are drawn uniformly from departments, and thesis flags go to
// randomly chosen seniors.
func Generate(departments []string, opts Options, r *rand.Rand) ([]*model.Student, error) {
	if opts.Students == 0 {
		return nil, nil
	}
	majors := slices.Clone(departments)
	slices.Sort(majors)
	majors = slices.Compact(majors)
	if len(majors) == 0 {
		return nil, ErrNoMajors
	}
	counts, err := YearCounts(opts.Students, opts.Mix)
	if err != nil {
		return nil, err
	}
	if opts.ThesisSeniors > counts[model.Senior] {
		return nil, fmt.Errorf("%w: %d thesis students, %d seniors", ErrTooManyThesis, opts.ThesisSeniors, counts[model.Senior])
	}
	personas := opts.Personas
	if len(personas) == 0 {
		personas = DefaultPersonas
	}

	years := make([]model.ClassYear, 0, opts.Students)
	for _, y := range []model.ClassYear{model.FirstYear, model.Sophomore, model.Junior, model.Senior} {
		for i := 0; i < counts[y]; i++ {
			years = append(years, y)
		}
	}
	rng.Shuffle(r, years)

	width := max(4, len(strconv.Itoa(opts.Students)))
	students := make([]*model.Student, opts.Students)
	var seniors []*model.Student
	for i := range students {
		st := &model.Student{
			ID:      model.StudentID(i+1, width),
			Year:    years[i],
			Major:   rng.Pick(r, majors),
			Persona: rng.Pick(r, personas),
		}
		if st.Year == model.Senior {
			seniors = append(seniors, st)
		}
		students[i] = st
	}
	for _, i := range r.Perm(len(seniors))[:opts.ThesisSeniors] {
		seniors[i].Thesis = true
	}
	return students, nil
}
