// Package store keeps simulation runs and their artifacts so they can be
// fetched after the run finished.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/registrar"
)

var (
	ErrNotFound        = errors.New("store: run not found")
	ErrUnknownArtifact = errors.New("store: unknown artifact")
	ErrUnknownBackend  = errors.New("store: unknown backend")
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type ArtifactKind string

const (
	ArtifactSchedule    ArtifactKind = "schedule"
	ArtifactEnrollments ArtifactKind = "enrollments"
	ArtifactStudents    ArtifactKind = "students"
)

// ParseArtifactKind maps a URL segment to an artifact kind.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch k := ArtifactKind(s); k {
	case ArtifactSchedule, ArtifactEnrollments, ArtifactStudents:
		return k, nil
	}
	return "", ErrUnknownArtifact
}

// Params are the knobs a run was started with.
type Params struct {
	Students          int       `json:"students"`
	ThesisSeniors     int       `json:"thesis_seniors"`
	ClassYearMix      []float64 `json:"class_year_mix"`
	CourseLoad        int       `json:"course_load"`
	ThesisCourseLoad  int       `json:"thesis_course_load"`
	ThesisLevel       int       `json:"thesis_level"`
	CatalogSampleSize int       `json:"catalog_sample_size"`
	CatalogSeed       int64     `json:"catalog_seed"`
	PopulationSeed    int64     `json:"population_seed"`
	RoomSeed          int64     `json:"room_seed"`
	EnrollmentSeed    int64     `json:"enrollment_seed"`
}

func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Students:          cfg.Students,
		ThesisSeniors:     cfg.ThesisSeniors,
		ClassYearMix:      cfg.ClassYearMix,
		CourseLoad:        cfg.CourseLoad,
		ThesisCourseLoad:  cfg.ThesisCourseLoad,
		ThesisLevel:       cfg.ThesisLevel,
		CatalogSampleSize: cfg.CatalogSampleSize,
		CatalogSeed:       cfg.CatalogSeed,
		PopulationSeed:    cfg.PopulationSeed,
		RoomSeed:          cfg.RoomSeed,
		EnrollmentSeed:    cfg.EnrollmentSeed,
	}
}

type Run struct {
	ID         uuid.UUID          `json:"id"`
	Status     Status             `json:"status"`
	Params     Params             `json:"params"`
	Summary    *registrar.Summary `json:"summary,omitempty"`
	Report     string             `json:"report,omitempty"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

// Store persists runs. Implementations are safe for concurrent use.
type Store interface {
	Create(ctx context.Context, params Params) (*Run, error)
	Complete(ctx context.Context, id uuid.UUID, summary registrar.Summary, report string, artifacts *registrar.Artifacts) error
	Fail(ctx context.Context, id uuid.UUID, cause error) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	// List returns runs newest first.
	List(ctx context.Context) ([]*Run, error)
	Artifact(ctx context.Context, id uuid.UUID, kind ArtifactKind) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func newRun(params Params) *Run {
	return &Run{
		ID:        uuid.New(),
		Status:    StatusRunning,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
}

func pick(a *registrar.Artifacts, kind ArtifactKind) []byte {
	switch kind {
	case ArtifactSchedule:
		return a.Schedule
	case ArtifactEnrollments:
		return a.Enrollments
	case ArtifactStudents:
		return a.Students
	}
	return nil
}
