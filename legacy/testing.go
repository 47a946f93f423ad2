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
	"database/sql"
	"fmt"

	"github.com/poiesic/voicetrack/core"
)

// Schema is the table layout written by the legacy application.
const Schema = `
CREATE TABLE IF NOT EXISTS students (
	roll_no TEXT PRIMARY KEY,
	embedding_path TEXT,
	time REAL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS teachers (
	teacher_id TEXT PRIMARY KEY,
	embedding_path TEXT
);
`

// Fixture describes rows to seed into a legacy database. Nil pointers are written as NULL.
type Fixture struct {
	Students []FixtureStudent
	Teachers []FixtureTeacher
}

type FixtureStudent struct {
	RollNo        string
	EmbeddingPath *string
	Time          *float64
}

type FixtureTeacher struct {
	TeacherID     string
	EmbeddingPath *string
}

// WriteFixture creates a legacy database at path and seeds it. Intended for tests and demos.
func WriteFixture(path string, f Fixture) error {
	db, err := sql.Open("sqlite3", fileDSN(path, "rwc"))
	if err != nil {
		return fmt.Errorf("failed to create legacy database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create legacy schema: %w", err)
	}
	for _, s := range f.Students {
		if _, err := db.Exec("INSERT INTO students (roll_no, embedding_path, time) VALUES (?, ?, ?)",
			s.RollNo, s.EmbeddingPath, s.Time); err != nil {
			return fmt.Errorf("failed to insert student %s: %w", s.RollNo, err)
		}
	}
	for _, t := range f.Teachers {
		if _, err := db.Exec("INSERT INTO teachers (teacher_id, embedding_path) VALUES (?, ?)",
			t.TeacherID, t.EmbeddingPath); err != nil {
			return fmt.Errorf("failed to insert teacher %s: %w", t.TeacherID, err)
		}
	}
	return nil
}

// StudentRow builds a fixture row with both columns set.
func StudentRow(s core.Student) FixtureStudent {
	path, t := s.EmbeddingPath, s.Time
	return FixtureStudent{RollNo: s.RollNo, EmbeddingPath: &path, Time: &t}
}

// TeacherRow builds a fixture row with the path set.
func TeacherRow(t core.Teacher) FixtureTeacher {
	path := t.EmbeddingPath
	return FixtureTeacher{TeacherID: t.TeacherID, EmbeddingPath: &path}
}
