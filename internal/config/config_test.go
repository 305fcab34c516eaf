package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhyrak/go-registrar/internal/config"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, config.NewDefault().Validate())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STUDENTS", "300")
	t.Setenv("THESIS_SENIORS", "12")
	t.Setenv("CLASS_YEAR_MIX", "0.25, 0.25, 0.25, 0.25")
	t.Setenv("ENROLLMENT_SEED", "987654321987")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("RUN_TTL_HOURS", "2")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("COURSE_LOAD", "five")

	cfg := config.Load()

	assert.Equal(t, 300, cfg.Students)
	assert.Equal(t, 12, cfg.ThesisSeniors)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, cfg.ClassYearMix)
	assert.Equal(t, int64(987654321987), cfg.EnrollmentSeed)
	assert.Equal(t, ';', cfg.Delimiter)
	assert.Equal(t, 2*time.Hour, cfg.RunTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.CourseLoad, "unparsable values fall back to the default")
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*config.Config){
		"thesis above students":    func(c *config.Config) { c.Students, c.ThesisSeniors = 10, 11 },
		"short mix":                func(c *config.Config) { c.ClassYearMix = []float64{0.5, 0.5} },
		"negative share":           func(c *config.Config) { c.ClassYearMix = []float64{0.5, -0.1, 0.3, 0.3} },
		"zero course load":         func(c *config.Config) { c.CourseLoad = 0 },
		"thesis load above normal": func(c *config.Config) { c.ThesisCourseLoad = 5 },
		"unknown backend":          func(c *config.Config) { c.StoreBackend = "mongo" },
		"postgres without url":     func(c *config.Config) { c.StoreBackend, c.DatabaseURL = "postgres", "" },
		"bad log format":           func(c *config.Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.NewDefault()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseFloats(t *testing.T) {
	got, err := config.ParseFloats("1,2.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5}, got)

	_, err = config.ParseFloats("1,x")
	assert.Error(t, err)
}
