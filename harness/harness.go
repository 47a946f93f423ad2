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


package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
)

const (
	SentinelRollNo        = "TEST001"
	SentinelStudentPath   = "test_embedding_001.npy"
	SentinelTeacherID     = "TEACHER001"
	SentinelTeacherPath   = "test_teacher_embedding_001.npy"
	SentinelTimeIncrement = 30.5
)

// Step is the outcome of one check.
type Step struct {
	Name   string
	Passed bool
	Detail string
}

// Report collects step outcomes in execution order.
type Report struct {
	Steps []Step
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	for _, s := range r.Steps {
		if !s.Passed {
			return false
		}
	}
	return len(r.Steps) > 0
}

// WriteTo renders the report as text, one line per step plus a summary.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}

	passed := 0
	for i, s := range r.Steps {
		status := "FAIL"
		if s.Passed {
			status = "PASS"
			passed++
		}
		if err := write("%2d. [%s] %s: %s\n", i+1, status, s.Name, s.Detail); err != nil {
			return total, err
		}
	}
	err := write("%d/%d steps passed\n", passed, len(r.Steps))
	return total, err
}

// Harness drives the verification sequence.
type Harness struct {
	students storage.StudentRepository
	teachers storage.TeacherRepository
	logger   *slog.Logger
}

// New creates a harness. A nil logger means slog.Default().
func New(students storage.StudentRepository, teachers storage.TeacherRepository, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{students: students, teachers: teachers, logger: logger}
}

// Run executes all steps. Every step runs even if an earlier one failed.
func (h *Harness) Run(ctx context.Context) *Report {
	report := &Report{}
	record := func(name string, err error, detail string) {
		step := Step{Name: name, Passed: err == nil, Detail: detail}
		if err != nil {
			step.Detail = err.Error()
			h.logger.Error("verification step failed", "step", name, "err", err)
		} else {
			h.logger.Info("verification step passed", "step", name, "detail", detail)
		}
		report.Steps = append(report.Steps, step)
	}

	err := h.students.AddStudent(ctx, SentinelRollNo, SentinelStudentPath)
	record("add student", err, fmt.Sprintf("%s -> %s", SentinelRollNo, SentinelStudentPath))

	err = h.teachers.AddTeacher(ctx, SentinelTeacherID, SentinelTeacherPath)
	record("add teacher", err, fmt.Sprintf("%s -> %s", SentinelTeacherID, SentinelTeacherPath))

	studentCount, err := h.students.CountStudents(ctx)
	if err == nil && studentCount < 1 {
		err = fmt.Errorf("expected at least 1 student, got %d", studentCount)
	}
	record("count students", err, fmt.Sprintf("%d", studentCount))

	teacherCount, err := h.teachers.CountTeachers(ctx)
	if err == nil && teacherCount < 1 {
		err = fmt.Errorf("expected at least 1 teacher, got %d", teacherCount)
	}
	record("count teachers", err, fmt.Sprintf("%d", teacherCount))

	students, err := h.students.ListStudents(ctx)
	if err == nil && !containsStudent(students, SentinelRollNo) {
		err = fmt.Errorf("%s missing from %d students", SentinelRollNo, len(students))
	}
	record("list students", err, fmt.Sprintf("%d students including %s", len(students), SentinelRollNo))

	teachers, err := h.teachers.ListTeachers(ctx)
	if err == nil && !containsTeacher(teachers, SentinelTeacherID) {
		err = fmt.Errorf("%s missing from %d teachers", SentinelTeacherID, len(teachers))
	}
	record("list teachers", err, fmt.Sprintf("%d teachers including %s", len(teachers), SentinelTeacherID))

	student, err := h.students.GetStudent(ctx, SentinelRollNo)
	if err == nil && student.EmbeddingPath != SentinelStudentPath {
		err = fmt.Errorf("embedding path is %q, want %q", student.EmbeddingPath, SentinelStudentPath)
	}
	before := 0.0
	detail := ""
	if err == nil {
		before = student.Time
		detail = fmt.Sprintf("%s time=%g", student.RollNo, student.Time)
	}
	record("get student", err, detail)

	teacher, err := h.teachers.GetTeacher(ctx, SentinelTeacherID)
	if err == nil && teacher.EmbeddingPath != SentinelTeacherPath {
		err = fmt.Errorf("embedding path is %q, want %q", teacher.EmbeddingPath, SentinelTeacherPath)
	}
	detail = ""
	if err == nil {
		detail = fmt.Sprintf("%s -> %s", teacher.TeacherID, teacher.EmbeddingPath)
	}
	record("get teacher", err, detail)

	err = h.students.AddStudentTime(ctx, SentinelRollNo, SentinelTimeIncrement)
	record("add student time", err, fmt.Sprintf("+%g", SentinelTimeIncrement))

	updated, err := h.students.GetStudent(ctx, SentinelRollNo)
	detail = ""
	if err == nil {
		want := before + SentinelTimeIncrement
		if updated.Time != want {
			err = fmt.Errorf("time is %g, want %g", updated.Time, want)
		} else {
			detail = fmt.Sprintf("time %g -> %g", before, updated.Time)
		}
	}
	record("verify student time", err, detail)

	return report
}

// Cleanup deletes the sentinel records.
func (h *Harness) Cleanup(ctx context.Context) error {
	h.logger.Info("cleaning up test data")
	if err := h.students.DeleteStudent(ctx, SentinelRollNo); err != nil {
		return fmt.Errorf("failed to delete sentinel student: %w", err)
	}
	if err := h.teachers.DeleteTeacher(ctx, SentinelTeacherID); err != nil {
		return fmt.Errorf("failed to delete sentinel teacher: %w", err)
	}
	h.logger.Info("test data cleaned up")
	return nil
}

func containsStudent(students []*core.Student, rollNo string) bool {
	for _, s := range students {
		if s.RollNo == rollNo {
			return true
		}
	}
	return false
}

func containsTeacher(teachers []*core.Teacher, teacherID string) bool {
	for _, t := range teachers {
		if t.TeacherID == teacherID {
			return true
		}
	}
	return false
}
