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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/voicetrack/core"
	"github.com/stretchr/testify/assert"
)

var errUnavailable = errors.New("store unavailable")

// failingRepo returns err from every call.
type failingRepo struct {
	err   error
	calls int
}

func (f *failingRepo) EnsureIndexes(ctx context.Context) error { f.calls++; return f.err }
func (f *failingRepo) Close() error                            { return nil }

func (f *failingRepo) ListStudents(ctx context.Context) ([]*core.Student, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRepo) AddStudent(ctx context.Context, rollNo, embeddingPath string) error {
	f.calls++
	return f.err
}

func (f *failingRepo) AddStudentTime(ctx context.Context, rollNo string, delta float64) error {
	f.calls++
	return f.err
}

func (f *failingRepo) PutStudent(ctx context.Context, student *core.Student) error {
	f.calls++
	return f.err
}

func (f *failingRepo) GetStudent(ctx context.Context, rollNo string) (*core.Student, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRepo) DeleteStudent(ctx context.Context, rollNo string) error {
	f.calls++
	return f.err
}

func (f *failingRepo) CountStudents(ctx context.Context) (int64, error) {
	f.calls++
	return 0, f.err
}

func (f *failingRepo) GetStudentsByTimeRange(ctx context.Context, r core.TimeRange) ([]*core.Student, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRepo) ListTeachers(ctx context.Context) ([]*core.Teacher, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRepo) AddTeacher(ctx context.Context, teacherID, embeddingPath string) error {
	f.calls++
	return f.err
}

func (f *failingRepo) PutTeacher(ctx context.Context, teacher *core.Teacher) error {
	f.calls++
	return f.err
}

func (f *failingRepo) GetTeacher(ctx context.Context, teacherID string) (*core.Teacher, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRepo) DeleteTeacher(ctx context.Context, teacherID string) error {
	f.calls++
	return f.err
}

func (f *failingRepo) CountTeachers(ctx context.Context) (int64, error) {
	f.calls++
	return 0, f.err
}

var (
	_ StudentRepository = (*failingRepo)(nil)
	_ TeacherRepository = (*failingRepo)(nil)
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestLenientStudents_DefaultsOnError(t *testing.T) {
	repo := &failingRepo{err: errUnavailable}
	logger, logs := newBufferLogger()
	students := NewLenientStudents(repo, logger)
	ctx := context.Background()

	all := students.All(ctx)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	assert.Nil(t, students.Get(ctx, "R1"))
	assert.Equal(t, int64(0), students.Count(ctx))

	matched := students.ByTimeRange(ctx, core.AtLeast(0))
	assert.NotNil(t, matched)
	assert.Empty(t, matched)

	// Writes swallow the error
	students.Add(ctx, "R1", "p1.npy")
	students.AddTime(ctx, "R1", 1)
	students.Delete(ctx, "R1")

	assert.Equal(t, 7, repo.calls)
	assert.Contains(t, logs.String(), "error getting all students")
	assert.Contains(t, logs.String(), "error updating student time")
	assert.Contains(t, logs.String(), errUnavailable.Error())
}

func TestLenientStudents_NotFoundIsQuiet(t *testing.T) {
	repo := &failingRepo{err: ErrNotFound}
	logger, logs := newBufferLogger()
	students := NewLenientStudents(repo, logger)

	assert.Nil(t, students.Get(context.Background(), "R1"))
	assert.Empty(t, logs.String())
}

func TestLenientTeachers_DefaultsOnError(t *testing.T) {
	repo := &failingRepo{err: errUnavailable}
	logger, logs := newBufferLogger()
	teachers := NewLenientTeachers(repo, logger)
	ctx := context.Background()

	assert.Empty(t, teachers.All(ctx))
	assert.Nil(t, teachers.Get(ctx, "T1"))
	assert.Equal(t, int64(0), teachers.Count(ctx))
	teachers.Add(ctx, "T1", "t1.npy")
	teachers.Delete(ctx, "T1")

	assert.Equal(t, 5, repo.calls)
	assert.Contains(t, logs.String(), "error adding teacher")
}

func TestEnsureIndexes_LogsAndContinues(t *testing.T) {
	first := &failingRepo{err: errUnavailable}
	second := &failingRepo{}
	logger, logs := newBufferLogger()

	EnsureIndexes(context.Background(), logger, first, second)

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Contains(t, logs.String(), "error creating indexes")
}
