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


package voicetrack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/voicetrack/config"
	"github.com/poiesic/voicetrack/harness"
	"github.com/poiesic/voicetrack/migrate"
	"github.com/poiesic/voicetrack/storage"
	"github.com/poiesic/voicetrack/storage/badger"
	"github.com/poiesic/voicetrack/storage/mongo"
)

type Database struct {
	config        *config.Config
	mongoBackend  *mongo.Backend
	badgerBackend *badger.Backend
	studentRepo   storage.StudentRepository
	teacherRepo   storage.TeacherRepository
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used by the database and everything it creates.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the store selected by cfg and ensures its indexes.
// A nil cfg means config.DefaultConfig(). Index creation failures are
// logged and do not prevent the database from opening.
func NewDatabase(ctx context.Context, cfg *config.Config, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db := &Database{
		config: cfg,
		logger: options.logger,
	}

	switch cfg.Store.Backend {
	case config.BackendMongo:
		db.logger.Info("connecting to MongoDB", "url", cfg.Store.URL, "database", cfg.Store.DBName)
		backend, err := mongo.Connect(ctx, cfg.Store.URL, cfg.Store.DBName,
			mongo.WithTimeout(cfg.Store.OpTimeout),
			mongo.WithLogger(db.logger))
		if err != nil {
			return nil, err
		}
		db.mongoBackend = backend
		db.studentRepo = backend.StudentRepository()
		db.teacherRepo = backend.TeacherRepository()

	case config.BackendBadger:
		inMemory := cfg.Store.BadgerPath == ""
		db.logger.Info("opening badger store", "path", cfg.Store.BadgerPath, "in_memory", inMemory)
		backend, err := badger.OpenBackend(cfg.Store.BadgerPath, inMemory)
		if err != nil {
			return nil, err
		}

		studentRepo, err := badger.NewStudentRepository(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}

		teacherRepo, err := badger.NewTeacherRepository(backend)
		if err != nil {
			studentRepo.Close()
			backend.Close()
			return nil, err
		}

		db.badgerBackend = backend
		db.studentRepo = studentRepo
		db.teacherRepo = teacherRepo

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Store.Backend)
	}

	storage.EnsureIndexes(ctx, db.logger, db.studentRepo, db.teacherRepo)
	return db, nil
}

// Close closes the repositories and then the backend. Every layer is closed
// even if an earlier one fails; the first error is returned.
func (db *Database) Close() error {
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := db.teacherRepo.Close(); err != nil {
		db.logger.Error("error closing teacher repository", "err", err)
		keep(err)
	}
	if err := db.studentRepo.Close(); err != nil {
		db.logger.Error("error closing student repository", "err", err)
		keep(err)
	}

	if db.mongoBackend != nil {
		if err := db.mongoBackend.Close(); err != nil {
			db.logger.Error("error closing MongoDB client", "err", err)
			keep(err)
		}
	}
	if db.badgerBackend != nil {
		if err := db.badgerBackend.Close(); err != nil {
			db.logger.Error("error closing backend storage", "err", err)
			keep(err)
		}
	}
	return firstErr
}

// Students returns the strict student repository.
func (db *Database) Students() storage.StudentRepository {
	return db.studentRepo
}

// Teachers returns the strict teacher repository.
func (db *Database) Teachers() storage.TeacherRepository {
	return db.teacherRepo
}

// LenientStudents returns a student accessor that logs failures and returns defaults.
func (db *Database) LenientStudents() *storage.LenientStudents {
	return storage.NewLenientStudents(db.studentRepo, db.logger)
}

// LenientTeachers returns a teacher accessor that logs failures and returns defaults.
func (db *Database) LenientTeachers() *storage.LenientTeachers {
	return storage.NewLenientTeachers(db.teacherRepo, db.logger)
}

// NewMigrator creates a legacy migration into this database using the
// configured migration settings. opts are applied after the defaults.
func (db *Database) NewMigrator(opts ...migrate.Option) (*migrate.Migrator, error) {
	base := []migrate.Option{
		migrate.WithConfig(&migrate.Config{
			SourcePath:     db.config.Migrate.LegacyPath,
			PoolSize:       db.config.Migrate.PoolSize,
			ReportInterval: db.config.Migrate.ReportInterval,
		}),
		migrate.WithLogger(db.logger),
	}
	return migrate.NewMigrator(db.studentRepo, db.teacherRepo, append(base, opts...)...)
}

func (db *Database) NewHarness() *harness.Harness {
	return harness.New(db.studentRepo, db.teacherRepo, db.logger)
}
