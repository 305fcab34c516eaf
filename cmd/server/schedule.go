package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/registrar"
)

// execute runs one simulation and records its outcome in the store.
func (s *server) execute(cfg *config.Config, id uuid.UUID, in registrar.Input) {
	ctx := context.Background()
	log := s.log.With().Str("run_id", id.String()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Run aborted")
			if err := s.store.Fail(ctx, id, fmt.Errorf("run aborted: %v", r)); err != nil {
				log.Error().Err(err).Msg("Failed to record aborted run")
			}
		}
	}()

	res, err := registrar.Run(cfg, in, log)
	if err == nil {
		var art *registrar.Artifacts
		if art, err = res.Artifacts(); err == nil {
			err = s.store.Complete(ctx, id, res.Summary, res.Report, art)
		}
	}
	if err != nil {
		log.Warn().Err(err).Msg("Run failed")
		if ferr := s.store.Fail(ctx, id, err); ferr != nil {
			log.Error().Err(ferr).Msg("Failed to record run failure")
		}
	}
}
