package main

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/csvio"
	"github.com/rhyrak/go-registrar/internal/registrar"
	"github.com/rhyrak/go-registrar/internal/store"
	"github.com/rhyrak/go-registrar/pkg/model"
)

type server struct {
	store store.Store
	cfg   *config.Config
	log   zerolog.Logger
	// spawn runs a simulation in the background.
	spawn func(func())
}

func (s *server) runID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *server) fail(ctx *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	s.log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Request failed")
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) handleListRuns(ctx *gin.Context) {
	runs, err := s.store.List(ctx.Request.Context())
	if err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *server) handleGetRun(ctx *gin.Context) {
	id, ok := s.runID(ctx)
	if !ok {
		return
	}
	run, err := s.store.Get(ctx.Request.Context(), id)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, run)
}

func (s *server) handleGetArtifact(ctx *gin.Context) {
	id, ok := s.runID(ctx)
	if !ok {
		return
	}
	kind, err := store.ParseArtifactKind(ctx.Param("artifact"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	run, err := s.store.Get(ctx.Request.Context(), id)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if run.Status != store.StatusCompleted {
		ctx.JSON(http.StatusConflict, gin.H{"error": "run is " + string(run.Status), "status": run.Status})
		return
	}
	data, err := s.store.Artifact(ctx.Request.Context(), id, kind)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.csv"`, id, kind))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *server) handleDeleteRun(ctx *gin.Context) {
	id, ok := s.runID(ctx)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx.Request.Context(), id); err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// handlePostRun accepts a multipart form with "catalog" and "rooms" CSV files
// and optional numeric overrides, validates the input and starts the run in
// the background.
func (s *server) handlePostRun(ctx *gin.Context) {
	cfg, err := s.overrides(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := s.readInput(ctx, cfg.Delimiter)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrDataIntegrity) {
			status = http.StatusUnprocessableEntity
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	run, err := s.store.Create(ctx.Request.Context(), store.ParamsFromConfig(cfg))
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.spawn(func() { s.execute(cfg, run.ID, in) })

	ctx.JSON(http.StatusAccepted, gin.H{"id": run.ID})
}

var intOverrides = map[string]func(*config.Config, int64){
	"students":            func(c *config.Config, v int64) { c.Students = int(v) },
	"thesis_seniors":      func(c *config.Config, v int64) { c.ThesisSeniors = int(v) },
	"course_load":         func(c *config.Config, v int64) { c.CourseLoad = int(v) },
	"thesis_course_load":  func(c *config.Config, v int64) { c.ThesisCourseLoad = int(v) },
	"thesis_level":        func(c *config.Config, v int64) { c.ThesisLevel = int(v) },
	"shopping_list_size":  func(c *config.Config, v int64) { c.ShoppingListSize = int(v) },
	"catalog_sample_size": func(c *config.Config, v int64) { c.CatalogSampleSize = int(v) },
	"catalog_seed":        func(c *config.Config, v int64) { c.CatalogSeed = v },
	"population_seed":     func(c *config.Config, v int64) { c.PopulationSeed = v },
	"room_seed":           func(c *config.Config, v int64) { c.RoomSeed = v },
	"enrollment_seed":     func(c *config.Config, v int64) { c.EnrollmentSeed = v },
}

func (s *server) overrides(ctx *gin.Context) (*config.Config, error) {
	cfg := *s.cfg
	for field, set := range intOverrides {
		raw, ok := ctx.GetPostForm(field)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", field, raw)
		}
		set(&cfg, v)
	}
	if raw := ctx.PostForm("class_year_mix"); raw != "" {
		mix, err := config.ParseFloats(raw)
		if err != nil {
			return nil, fmt.Errorf("class_year_mix: %w", err)
		}
		cfg.ClassYearMix = mix
	}
	if raw := []rune(ctx.PostForm("delimiter")); len(raw) == 1 {
		cfg.Delimiter = raw[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *server) readInput(ctx *gin.Context, delim rune) (registrar.Input, error) {
	var in registrar.Input
	catalogFile, err := ctx.FormFile("catalog")
	if err != nil {
		return in, errors.New("catalog file is required")
	}
	roomsFile, err := ctx.FormFile("rooms")
	if err != nil {
		return in, errors.New("rooms file is required")
	}

	err = withFile(catalogFile, func(f multipart.File) (err error) {
		in.Catalog, err = csvio.LoadCatalog(f, delim)
		return err
	})
	if err != nil {
		return in, err
	}
	err = withFile(roomsFile, func(f multipart.File) (err error) {
		in.Rooms, err = csvio.LoadRooms(f, delim)
		return err
	})
	if err != nil {
		return in, err
	}
	return in, errors.Join(csvio.ValidateCatalog(in.Catalog), csvio.ValidateRooms(in.Rooms))
}

func withFile(fh *multipart.FileHeader, fn func(multipart.File) error) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return fn(f)
}
