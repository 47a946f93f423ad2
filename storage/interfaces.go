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


package storage

import (
	"context"

	"github.com/poiesic/voicetrack/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// EnsureIndexes establishes the uniqueness and lookup indexes the repository relies on.
	// Safe to call repeatedly.
	EnsureIndexes(ctx context.Context) error

	// Close releases resources held by the repository.
	// The shared backend connection is closed separately by its owner.
	Close() error
}

// StudentRepository provides operations for managing student records.
// Each method maps to a single atomic store-level operation.
type StudentRepository interface {
	Repository
	// ListStudents returns all students in insertion order.
	ListStudents(ctx context.Context) ([]*core.Student, error)

	// AddStudent creates or updates a student, setting its embedding path.
	// A newly created student starts with Time 0; an existing student's Time is untouched.
	AddStudent(ctx context.Context, rollNo, embeddingPath string) error

	// AddStudentTime increments a student's cumulative time by delta.
	// If the student does not exist it is created with Time equal to delta.
	// Returns core.ErrInvalidTimeDelta for negative or non-finite deltas.
	AddStudentTime(ctx context.Context, rollNo string, delta float64) error

	// PutStudent creates or replaces every field of a student.
	PutStudent(ctx context.Context, student *core.Student) error

	// GetStudent retrieves a student by roll number.
	// Returns ErrNotFound if the student doesn't exist.
	GetStudent(ctx context.Context, rollNo string) (*core.Student, error)

	// DeleteStudent removes a student by roll number.
	// Deleting a missing student is not an error.
	DeleteStudent(ctx context.Context, rollNo string) error

	// CountStudents returns the number of stored students.
	CountStudents(ctx context.Context) (int64, error)

	// GetStudentsByTimeRange returns students whose time falls inside r (bounds inclusive).
	// Returns ErrInvalidQuery if r is inverted or not finite.
	GetStudentsByTimeRange(ctx context.Context, r core.TimeRange) ([]*core.Student, error)
}

// TeacherRepository provides operations for managing teacher records.
type TeacherRepository interface {
	Repository
	// ListTeachers returns all teachers in insertion order.
	ListTeachers(ctx context.Context) ([]*core.Teacher, error)

	// AddTeacher creates or updates a teacher, setting its embedding path.
	AddTeacher(ctx context.Context, teacherID, embeddingPath string) error

	// PutTeacher creates or replaces every field of a teacher.
	PutTeacher(ctx context.Context, teacher *core.Teacher) error

	// GetTeacher retrieves a teacher by ID.
	// Returns ErrNotFound if the teacher doesn't exist.
	GetTeacher(ctx context.Context, teacherID string) (*core.Teacher, error)

	// DeleteTeacher removes a teacher by ID.
	// Deleting a missing teacher is not an error.
	DeleteTeacher(ctx context.Context, teacherID string) error

	// CountTeachers returns the number of stored teachers.
	CountTeachers(ctx context.Context) (int64, error)
}
