package badger

import (
	"context"
	"testing"

	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTeacher(t *testing.T) {
	_, teachers := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, teachers.AddTeacher(ctx, "T1", "t1.npy"))
	require.NoError(t, teachers.AddTeacher(ctx, "T1", "t1b.npy"))

	teacher, err := teachers.GetTeacher(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, &core.Teacher{TeacherID: "T1", EmbeddingPath: "t1b.npy"}, teacher)

	count, err := teachers.CountTeachers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAddTeacher_EmptyID(t *testing.T) {
	_, teachers := newTestRepositories(t)

	err := teachers.AddTeacher(context.Background(), "", "t1.npy")
	assert.ErrorIs(t, err, core.ErrEmptyTeacherID)
}

func TestGetTeacher_NotFound(t *testing.T) {
	_, teachers := newTestRepositories(t)

	teacher, err := teachers.GetTeacher(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, teacher)
}

func TestDeleteTeacher(t *testing.T) {
	_, teachers := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, teachers.AddTeacher(ctx, "T1", "t1.npy"))
	require.NoError(t, teachers.AddTeacher(ctx, "T2", "t2.npy"))
	require.NoError(t, teachers.DeleteTeacher(ctx, "T1"))
	require.NoError(t, teachers.DeleteTeacher(ctx, "T1"))

	all, err := teachers.ListTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "T2", all[0].TeacherID)

	count, err := teachers.CountTeachers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListTeachers_InsertionOrder(t *testing.T) {
	_, teachers := newTestRepositories(t)
	ctx := context.Background()

	order := []string{"T9", "T1", "T5"}
	for _, id := range order {
		require.NoError(t, teachers.AddTeacher(ctx, id, id+".npy"))
	}

	all, err := teachers.ListTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(order))
	for i, id := range order {
		assert.Equal(t, id, all[i].TeacherID)
	}
}

func TestStudentsAndTeachersAreIndependent(t *testing.T) {
	students, teachers := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, students.AddStudent(ctx, "X1", "s.npy"))
	require.NoError(t, teachers.AddTeacher(ctx, "X1", "t.npy"))

	studentCount, err := students.CountStudents(ctx)
	require.NoError(t, err)
	teacherCount, err := teachers.CountTeachers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), studentCount)
	assert.Equal(t, int64(1), teacherCount)

	require.NoError(t, teachers.DeleteTeacher(ctx, "X1"))
	student, err := students.GetStudent(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "s.npy", student.EmbeddingPath)
}
