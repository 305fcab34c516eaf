package registrar_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/csvio"
	"github.com/rhyrak/go-registrar/internal/population"
	"github.com/rhyrak/go-registrar/internal/registrar"
	"github.com/rhyrak/go-registrar/internal/rng"
	"github.com/rhyrak/go-registrar/pkg/model"
)

const roomsCSV = `room_id,room_type,building
HALL-1,Large Lecture Hall,Central
MAIN-1,Standard Classroom,Main
MAIN-2,Standard Classroom,Main
MAIN-3,Standard Classroom,Main
SEM-1,Seminar Room,Humanities
SEM-2,Seminar Room,Humanities
SCI-1,Lab,Science
BOX-1,Black Box,Arts
`

func catalogCSV() string {
	var b strings.Builder
	b.WriteString("course_code,department,course_level,component,enrollment_cap\n")
	for i, dept := range []string{"MATH", "HIST", "BIOL", "THEA"} {
		for j := 0; j < 6; j++ {
			level := 100 + 100*(j%3)
			capacity := 12 + (i*13+j*9)%50
			fmt.Fprintf(&b, "%s%d,%s,%d,Lecture,%d\n", dept, level+j, dept, level, capacity)
		}
		fmt.Fprintf(&b, "%s101,%s,100,Lecture,30\n", dept, dept)
	}
	b.WriteString("BIOL150,BIOL,100,Lab,18\n")
	b.WriteString("THEA230,THEA,200,Studio,14\n")
	b.WriteString("MATH490,MATH,490,Independent Study,\n")
	b.WriteString("HIST495,HIST,490,Independent Study,\n")
	b.WriteString("BIOL210,BIOL,210,Independent Study,N/A\n")
	return b.String()
}

func input(t *testing.T) registrar.Input {
	t.Helper()
	catalog, err := csvio.LoadCatalog(strings.NewReader(catalogCSV()), ',')
	require.NoError(t, err)
	rooms, err := csvio.LoadRooms(strings.NewReader(roomsCSV), ',')
	require.NoError(t, err)
	return registrar.Input{Catalog: catalog, Rooms: rooms}
}

func smallConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.Students = 240
	cfg.ThesisSeniors = 20
	cfg.ShoppingListSize = 8
	return cfg
}

func TestBuildSectionsNumbersPerCourse(t *testing.T) {
	records := []*model.CatalogRecord{
		{CourseCode: "MATH105", Department: "MATH", CourseLevel: 100, Component: "Lecture", EnrollmentCap: "45"},
		{CourseCode: "CHEM101", Department: "CHEM", CourseLevel: 100, Component: "lab", EnrollmentCap: "20"},
		{CourseCode: "MATH105", Department: "MATH", CourseLevel: 100, Component: "Lecture", EnrollmentCap: "30"},
	}
	sections, err := registrar.BuildSections(records)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "MATH105-1", sections[0].ID)
	assert.Equal(t, "CHEM101-1", sections[1].ID)
	assert.Equal(t, "MATH105-2", sections[2].ID)
	assert.Equal(t, model.ComponentLab, sections[1].Component)
	assert.Equal(t, 30, sections[2].Seats)
}

func TestSelectCatalogKeepsOrder(t *testing.T) {
	var records []*model.CatalogRecord
	for i := 0; i < 20; i++ {
		records = append(records, &model.CatalogRecord{CourseCode: fmt.Sprintf("C%02d", i)})
	}
	picked := registrar.SelectCatalog(records, 5, rng.New(8))
	require.Len(t, picked, 5)
	for i := 1; i < len(picked); i++ {
		assert.Less(t, picked[i-1].CourseCode, picked[i].CourseCode)
	}
	assert.Len(t, registrar.SelectCatalog(records, 0, rng.New(8)), 20)
	assert.Len(t, registrar.SelectCatalog(records, 50, rng.New(8)), 20)
}

func TestRunProducesValidCycle(t *testing.T) {
	res, err := registrar.Run(smallConfig(), input(t), zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, res.Summary.Valid, res.Report)
	assert.Equal(t, 33, res.Summary.Sections)
	assert.Equal(t, 3, res.Summary.Exempt)
	assert.Equal(t, res.Summary.Sections, res.Summary.Scheduled+res.Summary.Unscheduled+res.Summary.Exempt)
	assert.Equal(t, 240, res.Summary.Students)
	assert.Equal(t, 20, res.Summary.ThesisStudents)
	assert.Equal(t, 240, res.Summary.Complete+res.Summary.PartiallyUnfilled)
	assert.Equal(t, res.Summary.PartiallyUnfilled, res.Summary.EnrollmentShortfalls)
	assert.Equal(t, len(res.Enrollments), res.Summary.Enrollments)

	thesis := 0
	for _, e := range res.Enrollments {
		if e.Pass == model.PassThesis {
			thesis++
		}
	}
	assert.Equal(t, 20, thesis)
}

func TestRunIsByteForByteDeterministic(t *testing.T) {
	a, err := registrar.Run(smallConfig(), input(t), zerolog.Nop())
	require.NoError(t, err)
	b, err := registrar.Run(smallConfig(), input(t), zerolog.Nop())
	require.NoError(t, err)

	artA, err := a.Artifacts()
	require.NoError(t, err)
	artB, err := b.Artifacts()
	require.NoError(t, err)
	assert.Equal(t, string(artA.Schedule), string(artB.Schedule))
	assert.Equal(t, string(artA.Enrollments), string(artB.Enrollments))
	assert.Equal(t, string(artA.Students), string(artB.Students))

	cfg := smallConfig()
	cfg.EnrollmentSeed = 99
	c, err := registrar.Run(cfg, input(t), zerolog.Nop())
	require.NoError(t, err)
	artC, err := c.Artifacts()
	require.NoError(t, err)
	assert.Equal(t, string(artA.Schedule), string(artC.Schedule), "room seed unchanged")
	assert.NotEqual(t, string(artA.Enrollments), string(artC.Enrollments))
}

func TestRunRejectsBadInput(t *testing.T) {
	in := input(t)
	in.Catalog = append(in.Catalog, &model.CatalogRecord{CourseCode: "PHYS101", Department: "PHYS", CourseLevel: 100, Component: "Lab"})
	_, err := registrar.Run(smallConfig(), in, zerolog.Nop())
	var ie *csvio.IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "enrollment_cap", ie.Field)
	assert.ErrorIs(t, err, registrar.ErrDataIntegrity)
}

func TestRunRequiresThesisSections(t *testing.T) {
	in := input(t)
	var kept []*model.CatalogRecord
	for _, rec := range in.Catalog {
		if rec.CourseLevel < 400 {
			kept = append(kept, rec)
		}
	}
	in.Catalog = kept

	_, err := registrar.Run(smallConfig(), in, zerolog.Nop())
	assert.ErrorIs(t, err, registrar.ErrDataIntegrity)

	cfg := smallConfig()
	cfg.ThesisSeniors = 0
	_, err = registrar.Run(cfg, in, zerolog.Nop())
	assert.NoError(t, err)
}

func TestRunRejectsTooManyThesisSeniors(t *testing.T) {
	cfg := smallConfig()
	cfg.Students = 20
	cfg.ThesisSeniors = 15
	_, err := registrar.Run(cfg, input(t), zerolog.Nop())
	assert.ErrorIs(t, err, registrar.ErrDataIntegrity)
	assert.ErrorIs(t, err, population.ErrTooManyThesis)
}

func TestSummaryPrint(t *testing.T) {
	var b strings.Builder
	registrar.Summary{Sections: 3, Scheduled: 1, Unscheduled: 1, Exempt: 1, ThesisFallbacks: 2}.Print(&b)
	assert.Contains(t, b.String(), "Sections:    3 (1 scheduled, 1 unscheduled, 1 without a meeting)")
	assert.Contains(t, b.String(), "0 allocation, 0 enrollment, 2 thesis fallback")
}
