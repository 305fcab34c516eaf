package model

import "errors"

// ErrDataIntegrity is the root of every fatal input error. Nothing is
// allocated once it has been returned.
var ErrDataIntegrity = errors.New("data integrity error")

type ShortfallKind string

const (
	AllocationShortfall     ShortfallKind = "allocation_shortfall"
	EnrollmentShortfall     ShortfallKind = "enrollment_shortfall"
	ThesisPlacementFallback ShortfallKind = "thesis_placement_fallback"
)

// Shortfall is a non-fatal condition recorded during a run. Subject is the
// section ID for allocation shortfalls and the student ID otherwise.
type Shortfall struct {
	Kind    ShortfallKind
	Subject string
	Detail  string
}

// CountShortfalls tallies shortfalls by kind.
func CountShortfalls(list []Shortfall) map[ShortfallKind]int {
	counts := map[ShortfallKind]int{
		AllocationShortfall:     0,
		EnrollmentShortfall:     0,
		ThesisPlacementFallback: 0,
	}
	for _, s := range list {
		counts[s.Kind]++
	}
	return counts
}
