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


package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/legacy"
	"github.com/poiesic/voicetrack/storage"
)

const (
	// DefaultPoolSize keeps rows in legacy table order
	DefaultPoolSize = 1

	// DefaultReportInterval is the number of rows between progress lines
	DefaultReportInterval = 100
)

// Config holds migration settings.
type Config struct {
	SourcePath     string
	PoolSize       int
	ReportInterval int
}

// DefaultConfig returns the settings the legacy migration script used.
func DefaultConfig() *Config {
	return &Config{
		SourcePath:     legacy.DefaultPath,
		PoolSize:       DefaultPoolSize,
		ReportInterval: DefaultReportInterval,
	}
}

// FileChecker reports whether an embedding file exists.
type FileChecker func(path string) bool

// Result summarizes a migration run.
type Result struct {
	SourceMissing    bool
	StudentsMigrated int
	StudentsSkipped  int
	TeachersMigrated int
	TeachersSkipped  int
	// Final counts in the target store.
	StudentCount int64
	TeacherCount int64
}

// Migrator copies legacy rows into the target repositories.
type Migrator struct {
	students   storage.StudentRepository
	teachers   storage.TeacherRepository
	config     *Config
	logger     *slog.Logger
	progress   io.Writer
	fileExists FileChecker
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithConfig replaces the default migration settings.
func WithConfig(config *Config) Option {
	return func(m *Migrator) {
		m.config = config
	}
}

// WithLogger sets the logger for the migrator.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Migrator) {
		m.logger = logger
	}
}

// WithProgressWriter sets where progress lines are written. Defaults to io.Discard.
func WithProgressWriter(w io.Writer) Option {
	return func(m *Migrator) {
		m.progress = w
	}
}

// WithFileChecker replaces the embedding file existence check.
func WithFileChecker(fn FileChecker) Option {
	return func(m *Migrator) {
		m.fileExists = fn
	}
}

// NewMigrator creates a migrator writing to the given repositories.
func NewMigrator(students storage.StudentRepository, teachers storage.TeacherRepository, opts ...Option) (*Migrator, error) {
	if students == nil || teachers == nil {
		return nil, ErrMissingRepository
	}

	m := &Migrator{
		students:   students,
		teachers:   teachers,
		config:     DefaultConfig(),
		logger:     slog.Default(),
		progress:   io.Discard,
		fileExists: fileExists,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.config.PoolSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolSize, m.config.PoolSize)
	}
	if m.config.SourcePath == "" {
		m.config.SourcePath = legacy.DefaultPath
	}

	return m, nil
}

// Run performs the migration.
//
// A missing legacy file is not an error: Run logs a warning and returns a
// Result with SourceMissing set. Rows whose embedding file is absent are
// skipped. Every other failure stops the run and is returned.
func (m *Migrator) Run(ctx context.Context) (*Result, error) {
	m.logger.Info("connecting to legacy database", "path", m.config.SourcePath)
	src, err := legacy.Open(m.config.SourcePath)
	if errors.Is(err, legacy.ErrSourceFileMissing) {
		m.logger.Warn("legacy database not found, nothing to migrate", "path", m.config.SourcePath)
		return &Result{SourceMissing: true}, nil
	}
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if err := m.migrate(ctx, src, result); err != nil {
		src.Close()
		m.logger.Error("migration failed", "err", err)
		return nil, err
	}
	if err := src.Close(); err != nil {
		return nil, fmt.Errorf("failed to close legacy database: %w", err)
	}
	m.logger.Info("migration completed successfully")

	if result.StudentCount, err = m.students.CountStudents(ctx); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if result.TeacherCount, err = m.teachers.CountTeachers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count teachers: %w", err)
	}
	m.logger.Info("final counts", "students", result.StudentCount, "teachers", result.TeacherCount)

	return result, nil
}

func (m *Migrator) migrate(ctx context.Context, src *legacy.Store, result *Result) error {
	m.logger.Info("migrating students")
	total, err := src.CountStudents(ctx)
	if err != nil {
		return err
	}
	var migrated, skipped atomic.Int64
	tracker := NewProgressTracker(m.progress, "students", total, m.config.ReportInterval)
	err = m.runRows(ctx, tracker, func(submit func(func(context.Context) error) error) error {
		return src.ForEachStudent(ctx, func(s *core.Student) error {
			return submit(func(ctx context.Context) error {
				if !m.embeddingExists(s.EmbeddingPath) {
					m.logger.Warn("embedding file not found for student", "roll_no", s.RollNo, "path", s.EmbeddingPath)
					skipped.Add(1)
					return nil
				}
				if err := m.students.PutStudent(ctx, s); err != nil {
					return fmt.Errorf("failed to migrate student %s: %w", s.RollNo, err)
				}
				m.logger.Info("migrated student", "roll_no", s.RollNo)
				migrated.Add(1)
				return nil
			})
		})
	})
	result.StudentsMigrated, result.StudentsSkipped = int(migrated.Load()), int(skipped.Load())
	if err != nil {
		return err
	}

	m.logger.Info("migrating teachers")
	if total, err = src.CountTeachers(ctx); err != nil {
		return err
	}
	migrated.Store(0)
	skipped.Store(0)
	tracker = NewProgressTracker(m.progress, "teachers", total, m.config.ReportInterval)
	err = m.runRows(ctx, tracker, func(submit func(func(context.Context) error) error) error {
		return src.ForEachTeacher(ctx, func(t *core.Teacher) error {
			return submit(func(ctx context.Context) error {
				if !m.embeddingExists(t.EmbeddingPath) {
					m.logger.Warn("embedding file not found for teacher", "teacher_id", t.TeacherID, "path", t.EmbeddingPath)
					skipped.Add(1)
					return nil
				}
				if err := m.teachers.PutTeacher(ctx, t); err != nil {
					return fmt.Errorf("failed to migrate teacher %s: %w", t.TeacherID, err)
				}
				m.logger.Info("migrated teacher", "teacher_id", t.TeacherID)
				migrated.Add(1)
				return nil
			})
		})
	})
	result.TeachersMigrated, result.TeachersSkipped = int(migrated.Load()), int(skipped.Load())
	return err
}

// runRows feeds the rows produced by scan through a worker pool. The first
// task error cancels the tasks that have not started yet and is returned.
func (m *Migrator) runRows(ctx context.Context, tracker *ProgressTracker, scan func(submit func(func(context.Context) error) error) error) error {
	pool, err := ants.NewPool(m.config.PoolSize)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	submit := func(task func(context.Context) error) error {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := task(ctx); err != nil {
				cancel(err)
				return
			}
			tracker.Increment(1)
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit row: %w", err)
		}
		return nil
	}

	tracker.Start()
	scanErr := scan(submit)
	wg.Wait()
	tracker.Finish()

	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return scanErr
}

func (m *Migrator) embeddingExists(path string) bool {
	return path != "" && m.fileExists(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
