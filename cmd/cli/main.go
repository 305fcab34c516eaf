package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/csvio"
	"github.com/rhyrak/go-registrar/internal/logger"
	"github.com/rhyrak/go-registrar/internal/registrar"
)

func main() {
	cfg := config.Load()

	// Flags override environment and .env values.
	flag.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "section catalog CSV")
	flag.StringVar(&cfg.RoomsFile, "rooms", cfg.RoomsFile, "room catalog CSV")
	flag.StringVar(&cfg.ExportDir, "out", cfg.ExportDir, "directory for the schedule, enrollment and student artifacts")
	flag.IntVar(&cfg.Students, "students", cfg.Students, "number of students to generate")
	flag.IntVar(&cfg.ThesisSeniors, "thesis", cfg.ThesisSeniors, "number of seniors writing a thesis")
	flag.IntVar(&cfg.CourseLoad, "load", cfg.CourseLoad, "target course load")
	flag.IntVar(&cfg.ThesisCourseLoad, "thesis-load", cfg.ThesisCourseLoad, "target course load of thesis students")
	flag.IntVar(&cfg.ThesisLevel, "thesis-level", cfg.ThesisLevel, "lowest Independent Study level that counts as a thesis")
	flag.IntVar(&cfg.ShoppingListSize, "shopping-list", cfg.ShoppingListSize, "sections a student looks at in the first pass, 0 for all")
	flag.IntVar(&cfg.CatalogSampleSize, "sample", cfg.CatalogSampleSize, "catalog records to keep, 0 for all")
	flag.Int64Var(&cfg.CatalogSeed, "catalog-seed", cfg.CatalogSeed, "catalog selection seed")
	flag.Int64Var(&cfg.PopulationSeed, "population-seed", cfg.PopulationSeed, "student population seed")
	flag.Int64Var(&cfg.RoomSeed, "room-seed", cfg.RoomSeed, "room assignment seed")
	flag.Int64Var(&cfg.EnrollmentSeed, "enrollment-seed", cfg.EnrollmentSeed, "enrollment seed")
	mix := flag.String("mix", "", "class-year shares FirstYear,Sophomore,Junior,Senior")
	quiet := flag.Bool("quiet", false, "do not print the schedule")
	flag.Parse()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if *mix != "" {
		shares, err := config.ParseFloats(*mix)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -mix")
		}
		cfg.ClassYearMix = shares
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	catalog, err := csvio.LoadCatalogFile(cfg.CatalogFile, cfg.Delimiter)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("Failed to load catalog")
	}
	rooms, err := csvio.LoadRoomsFile(cfg.RoomsFile, cfg.Delimiter)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.RoomsFile).Msg("Failed to load rooms")
	}

	start := time.Now()
	res, err := registrar.Run(cfg, registrar.Input{Catalog: catalog, Rooms: rooms}, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Fatal().Msg("Registration cycle aborted")
	}
	elapsed := time.Since(start)

	paths, err := csvio.ExportAll(cfg.ExportDir, res.Sections, res.Enrollments, res.Students)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to export artifacts")
	}

	if !*quiet {
		csvio.PrintSchedule(os.Stdout, res.Sections)
	}
	fmt.Println()
	fmt.Print(res.Report)
	res.Summary.Print(os.Stdout)
	fmt.Printf("Timer: %f ms\n", float64(elapsed.Microseconds())/1000.0)
	for _, p := range paths {
		fmt.Println("Exported output to: " + p)
	}

	if !res.Summary.Valid {
		os.Exit(1)
	}
}
