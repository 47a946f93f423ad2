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
	"errors"
	"log/slog"

	"github.com/poiesic/voicetrack/core"
)

// LenientStudents wraps a StudentRepository so that no call fails the caller.
// Errors are logged and replaced with an empty or zero result, which means
// callers cannot tell "no data" from "store unavailable".
type LenientStudents struct {
	repo   StudentRepository
	logger *slog.Logger
}

// NewLenientStudents wraps repo. A nil logger uses slog.Default().
func NewLenientStudents(repo StudentRepository, logger *slog.Logger) *LenientStudents {
	if logger == nil {
		logger = slog.Default()
	}
	return &LenientStudents{repo: repo, logger: logger}
}

// All returns every student, or an empty slice on error.
func (l *LenientStudents) All(ctx context.Context) []*core.Student {
	students, err := l.repo.ListStudents(ctx)
	if err != nil {
		l.logger.Error("error getting all students", "err", err)
		return []*core.Student{}
	}
	return students
}

// Add creates or updates a student's embedding path.
func (l *LenientStudents) Add(ctx context.Context, rollNo, embeddingPath string) {
	if err := l.repo.AddStudent(ctx, rollNo, embeddingPath); err != nil {
		l.logger.Error("error adding student", "roll_no", rollNo, "err", err)
	}
}

// AddTime increments a student's interaction time.
func (l *LenientStudents) AddTime(ctx context.Context, rollNo string, delta float64) {
	if err := l.repo.AddStudentTime(ctx, rollNo, delta); err != nil {
		l.logger.Error("error updating student time", "roll_no", rollNo, "delta", delta, "err", err)
	}
}

// Get returns the student or nil when it is missing or the lookup failed.
func (l *LenientStudents) Get(ctx context.Context, rollNo string) *core.Student {
	student, err := l.repo.GetStudent(ctx, rollNo)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Error("error getting student by roll number", "roll_no", rollNo, "err", err)
		}
		return nil
	}
	return student
}

// Delete removes a student.
func (l *LenientStudents) Delete(ctx context.Context, rollNo string) {
	if err := l.repo.DeleteStudent(ctx, rollNo); err != nil {
		l.logger.Error("error deleting student", "roll_no", rollNo, "err", err)
	}
}

// Count returns the number of students, or 0 on error.
func (l *LenientStudents) Count(ctx context.Context) int64 {
	n, err := l.repo.CountStudents(ctx)
	if err != nil {
		l.logger.Error("error getting student count", "err", err)
		return 0
	}
	return n
}

// ByTimeRange returns students inside r, or an empty slice on error.
func (l *LenientStudents) ByTimeRange(ctx context.Context, r core.TimeRange) []*core.Student {
	students, err := l.repo.GetStudentsByTimeRange(ctx, r)
	if err != nil {
		l.logger.Error("error getting students by time range", "err", err)
		return []*core.Student{}
	}
	return students
}

// LenientTeachers wraps a TeacherRepository so that no call fails the caller.
type LenientTeachers struct {
	repo   TeacherRepository
	logger *slog.Logger
}

// NewLenientTeachers wraps repo. A nil logger uses slog.Default().
func NewLenientTeachers(repo TeacherRepository, logger *slog.Logger) *LenientTeachers {
	if logger == nil {
		logger = slog.Default()
	}
	return &LenientTeachers{repo: repo, logger: logger}
}

// All returns every teacher, or an empty slice on error.
func (l *LenientTeachers) All(ctx context.Context) []*core.Teacher {
	teachers, err := l.repo.ListTeachers(ctx)
	if err != nil {
		l.logger.Error("error getting all teachers", "err", err)
		return []*core.Teacher{}
	}
	return teachers
}

// Add creates or updates a teacher's embedding path.
func (l *LenientTeachers) Add(ctx context.Context, teacherID, embeddingPath string) {
	if err := l.repo.AddTeacher(ctx, teacherID, embeddingPath); err != nil {
		l.logger.Error("error adding teacher", "teacher_id", teacherID, "err", err)
	}
}

// Get returns the teacher or nil when it is missing or the lookup failed.
func (l *LenientTeachers) Get(ctx context.Context, teacherID string) *core.Teacher {
	teacher, err := l.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Error("error getting teacher by teacher ID", "teacher_id", teacherID, "err", err)
		}
		return nil
	}
	return teacher
}

// Delete removes a teacher.
func (l *LenientTeachers) Delete(ctx context.Context, teacherID string) {
	if err := l.repo.DeleteTeacher(ctx, teacherID); err != nil {
		l.logger.Error("error deleting teacher", "teacher_id", teacherID, "err", err)
	}
}

// Count returns the number of teachers, or 0 on error.
func (l *LenientTeachers) Count(ctx context.Context) int64 {
	n, err := l.repo.CountTeachers(ctx)
	if err != nil {
		l.logger.Error("error getting teacher count", "err", err)
		return 0
	}
	return n
}

// EnsureIndexes sets up indexes on every repository, logging failures instead of returning them.
func EnsureIndexes(ctx context.Context, logger *slog.Logger, repos ...Repository) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, repo := range repos {
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Error("error creating indexes", "err", err)
		}
	}
	logger.Debug("database indexes ensured", "repositories", len(repos))
}
