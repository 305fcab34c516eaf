package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rhyrak/go-registrar/internal/registrar"
)

type memoryEntry struct {
	run       Run
	artifacts *registrar.Artifacts
}

// MemoryStore keeps runs in process memory. Runs are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: map[uuid.UUID]*memoryEntry{}}
}

func (s *MemoryStore) Create(_ context.Context, params Params) (*Run, error) {
	run := newRun(params)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = &memoryEntry{run: *run}
	return run, nil
}

func (s *MemoryStore) Complete(_ context.Context, id uuid.UUID, summary registrar.Summary, report string, artifacts *registrar.Artifacts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	e.run.Status = StatusCompleted
	e.run.Summary = &summary
	e.run.Report = report
	e.run.FinishedAt = &now
	e.artifacts = artifacts
	return nil
}

func (s *MemoryStore) Fail(_ context.Context, id uuid.UUID, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	e.run.Status = StatusFailed
	e.run.Error = cause.Error()
	e.run.FinishedAt = &now
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	run := e.run
	return &run, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Run, error) {
	s.mu.RLock()
	runs := make([]*Run, 0, len(s.runs))
	for _, e := range s.runs {
		run := e.run
		runs = append(runs, &run)
	}
	s.mu.RUnlock()
	slices.SortFunc(runs, func(a, b *Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(b.ID[:], a.ID[:])
	})
	return runs, nil
}

func (s *MemoryStore) Artifact(_ context.Context, id uuid.UUID, kind ArtifactKind) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.runs[id]
	if !ok || e.artifacts == nil {
		return nil, ErrNotFound
	}
	data := pick(e.artifacts, kind)
	if data == nil {
		return nil, ErrUnknownArtifact
	}
	return data, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return ErrNotFound
	}
	delete(s.runs, id)
	return nil
}
