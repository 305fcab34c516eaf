package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhyrak/go-registrar/internal/registrar"
)

// PostgresStore keeps runs in the runs table created by the migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const runColumns = `id, status, params, summary, report, error, created_at, finished_at`

func (s *PostgresStore) Create(ctx context.Context, params Params) (*Run, error) {
	run := newRun(params)
	raw, err := json.Marshal(run.Params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, params, created_at) VALUES ($1, $2, $3, $4)`,
		run.ID, string(run.Status), raw, run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (s *PostgresStore) Complete(ctx context.Context, id uuid.UUID, summary registrar.Summary, report string, artifacts *registrar.Artifacts) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs
		 SET status = $2, summary = $3, report = $4,
		     schedule_csv = $5, enrollments_csv = $6, students_csv = $7, finished_at = NOW()
		 WHERE id = $1`,
		id, string(StatusCompleted), raw, report, artifacts.Schedule, artifacts.Enrollments, artifacts.Students)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Fail(ctx context.Context, id uuid.UUID, cause error) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $2, error = $3, finished_at = NOW() WHERE id = $1`,
		id, string(StatusFailed), cause.Error())
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var (
		run     Run
		status  string
		params  []byte
		summary []byte
	)
	if err := row.Scan(&run.ID, &status, &params, &summary, &run.Report, &run.Error, &run.CreatedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	if err := json.Unmarshal(params, &run.Params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if summary != nil {
		run.Summary = &registrar.Summary{}
		if err := json.Unmarshal(summary, run.Summary); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
	}
	return &run, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

func (s *PostgresStore) List(ctx context.Context) ([]*Run, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) Artifact(ctx context.Context, id uuid.UUID, kind ArtifactKind) ([]byte, error) {
	var column string
	switch kind {
	case ArtifactSchedule:
		column = "schedule_csv"
	case ArtifactEnrollments:
		column = "enrollments_csv"
	case ArtifactStudents:
		column = "students_csv"
	default:
		return nil, ErrUnknownArtifact
	}
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT `+column+` FROM runs WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && data == nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
