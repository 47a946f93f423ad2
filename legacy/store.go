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


package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/poiesic/voicetrack/core"
)

// DefaultPath is the file name the legacy application wrote to.
const DefaultPath = "student_voice_track.db"

// ErrSourceFileMissing is returned by Open when the legacy database file does not exist.
var ErrSourceFileMissing = errors.New("legacy database file not found")

// Store reads the students and teachers tables of a legacy SQLite database.
// The database is opened read-only; nothing in this package writes to it.
type Store struct {
	db   *sql.DB
	path string
}

// CheckSource reports whether the legacy database file can be read.
// Returns ErrSourceFileMissing if the file is absent.
func CheckSource(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceFileMissing, path)
		}
		return fmt.Errorf("failed to stat legacy database: %w", err)
	}
	return nil
}

// Open opens the legacy database at path in read-only mode.
// Returns ErrSourceFileMissing if the file is absent.
func Open(path string) (*Store, error) {
	if err := CheckSource(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", fileDSN(path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to legacy database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, path: path}, nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CountStudents returns the number of rows in the students table.
func (s *Store) CountStudents(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM students")
}

// CountTeachers returns the number of rows in the teachers table.
func (s *Store) CountTeachers(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM teachers")
}

// ForEachStudent calls fn for every students row in table order.
// A NULL embedding_path is returned as the empty string and a NULL time as 0.
// Iteration stops on the first error from fn.
func (s *Store) ForEachStudent(ctx context.Context, fn func(*core.Student) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT roll_no, embedding_path, time FROM students")
	if err != nil {
		return fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rollNo string
			path   sql.NullString
			spent  sql.NullFloat64
		)
		if err := rows.Scan(&rollNo, &path, &spent); err != nil {
			return fmt.Errorf("failed to scan student row: %w", err)
		}
		if err := fn(&core.Student{RollNo: rollNo, EmbeddingPath: path.String, Time: spent.Float64}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read students: %w", err)
	}
	return nil
}

// ForEachTeacher calls fn for every teachers row in table order.
func (s *Store) ForEachTeacher(ctx context.Context, fn func(*core.Teacher) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT teacher_id, embedding_path FROM teachers")
	if err != nil {
		return fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			teacherID string
			path      sql.NullString
		)
		if err := rows.Scan(&teacherID, &path); err != nil {
			return fmt.Errorf("failed to scan teacher row: %w", err)
		}
		if err := fn(&core.Teacher{TeacherID: teacherID, EmbeddingPath: path.String}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read teachers: %w", err)
	}
	return nil
}

func (s *Store) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// fileDSN builds an SQLite URI filename so that '?' and '#' in path stay part of the name.
func fileDSN(path, mode string) string {
	u := &url.URL{Scheme: "file", Path: path, OmitHost: true, RawQuery: "mode=" + mode}
	return u.String()
}
