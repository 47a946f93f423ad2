// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/voicetrack"
	"github.com/poiesic/voicetrack/config"
	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/legacy"
	"github.com/poiesic/voicetrack/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "voicetrack",
		Usage: "Student and teacher voice embedding store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML config file (default: $CONFIG_FILE or voicetrack.toml)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Copy students and teachers from the legacy SQLite database",
				Action: migrateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Path to the legacy SQLite database (overrides config)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of rows written concurrently (overrides config)",
					},
				},
			},
			{
				Name:   "verify",
				Usage:  "Run CRUD checks against the store with sentinel records",
				Action: verifyCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "cleanup",
						Usage: "Delete the sentinel records without prompting",
					},
				},
			},
			{
				Name:   "students",
				Usage:  "List students, optionally filtered by accumulated time",
				Action: studentsCommand,
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "min",
						Usage: "Minimum accumulated time in seconds (inclusive)",
					},
					&cli.Float64Flag{
						Name:  "max",
						Usage: "Maximum accumulated time in seconds (inclusive)",
					},
				},
			},
			{
				Name:   "teachers",
				Usage:  "List teachers",
				Action: teachersCommand,
			},
		},
	}
}

func openDatabase(c *cli.Context) (*voicetrack.Database, *config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := voicetrack.NewDatabase(c.Context, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}

func migrateCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if source := c.String("source"); source != "" {
		cfg.Migrate.LegacyPath = source
	}
	if c.IsSet("pool-size") {
		if c.Int("pool-size") <= 0 {
			return fmt.Errorf("pool-size must be greater than 0")
		}
		cfg.Migrate.PoolSize = c.Int("pool-size")
	}

	// Nothing to migrate means the target store is never contacted.
	if err := legacy.CheckSource(cfg.Migrate.LegacyPath); errors.Is(err, legacy.ErrSourceFileMissing) {
		slog.Warn("legacy database not found, nothing to migrate", "path", cfg.Migrate.LegacyPath)
		fmt.Fprintf(c.App.Writer, "Legacy database %s not found. Nothing to migrate.\n", cfg.Migrate.LegacyPath)
		return nil
	}

	db, err := voicetrack.NewDatabase(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	migrator, err := db.NewMigrator(migrate.WithProgressWriter(c.App.ErrWriter))
	if err != nil {
		return err
	}

	result, err := migrator.Run(c.Context)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if result.SourceMissing {
		fmt.Fprintf(c.App.Writer, "Legacy database %s not found. Nothing to migrate.\n", cfg.Migrate.LegacyPath)
		return nil
	}

	fmt.Fprintf(c.App.Writer, "Students: %d migrated, %d skipped\n", result.StudentsMigrated, result.StudentsSkipped)
	fmt.Fprintf(c.App.Writer, "Teachers: %d migrated, %d skipped\n", result.TeachersMigrated, result.TeachersSkipped)
	fmt.Fprintf(c.App.Writer, "Final counts - Students: %d, Teachers: %d\n", result.StudentCount, result.TeacherCount)
	return nil
}

func verifyCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("verifying store", "backend", cfg.Store.Backend, "url", cfg.Store.URL, "database", cfg.Store.DBName)

	h := db.NewHarness()
	report := h.Run(c.Context)
	if _, err := report.WriteTo(c.App.Writer); err != nil {
		return err
	}
	if !report.Passed() {
		return errors.New("verification failed, check the store connection")
	}

	cleanup := c.Bool("cleanup")
	if !cleanup {
		fmt.Fprint(c.App.Writer, "\nDo you want to clean up test data? (y/n): ")
		cleanup = confirm(c.App.Reader)
	}
	if !cleanup {
		return nil
	}
	return h.Cleanup(c.Context)
}

func confirm(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func studentsCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var students []*core.Student
	if c.IsSet("min") || c.IsSet("max") {
		r := core.AtLeast(c.Float64("min"))
		if c.IsSet("max") {
			r = core.Between(c.Float64("min"), c.Float64("max"))
		}
		students, err = db.Students().GetStudentsByTimeRange(c.Context, r)
	} else {
		students, err = db.Students().ListStudents(c.Context)
	}
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	for _, s := range students {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%g\n", s.RollNo, s.EmbeddingPath, s.Time)
	}
	return nil
}

func teachersCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	teachers, err := db.Teachers().ListTeachers(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list teachers: %w", err)
	}

	for _, t := range teachers {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", t.TeacherID, t.EmbeddingPath)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
