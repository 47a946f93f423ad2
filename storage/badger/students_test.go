package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepositories(t *testing.T) (storage.StudentRepository, storage.TeacherRepository) {
	t.Helper()
	students, teachers, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		teachers.Close()
		students.Close()
		backend.Close()
	})
	return students, teachers
}

func TestAddStudent_CreatesWithZeroTime(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, students.AddStudent(ctx, "R1", "p1.npy"))

	student, err := students.GetStudent(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, &core.Student{RollNo: "R1", EmbeddingPath: "p1.npy", Time: 0}, student)

	count, err := students.CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAddStudent_UpdatesPathKeepsTime(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, students.AddStudent(ctx, "R1", "p1.npy"))
	require.NoError(t, students.AddStudentTime(ctx, "R1", 10))
	require.NoError(t, students.AddStudent(ctx, "R1", "p2.npy"))

	student, err := students.GetStudent(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, "p2.npy", student.EmbeddingPath)
	assert.Equal(t, 10.0, student.Time)
}

func TestAddStudent_RepeatedUpsertsKeepOneRecord(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, students.AddStudent(ctx, "R1", fmt.Sprintf("p%d.npy", i)))
		require.NoError(t, students.AddStudentTime(ctx, "R1", 1))
	}

	count, err := students.CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	all, err := students.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "p4.npy", all[0].EmbeddingPath)
	assert.Equal(t, 5.0, all[0].Time)

	// Exactly one time index entry survives
	matched, err := students.GetStudentsByTimeRange(ctx, core.AtLeast(0))
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}

func TestAddStudent_EmptyRollNo(t *testing.T) {
	students, _ := newTestRepositories(t)

	err := students.AddStudent(context.Background(), "", "p1.npy")
	assert.ErrorIs(t, err, core.ErrEmptyRollNo)
}

func TestAddStudentTime(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	t.Run("creates missing student with delta", func(t *testing.T) {
		require.NoError(t, students.AddStudentTime(ctx, "NEW", 7.25))
		student, err := students.GetStudent(ctx, "NEW")
		require.NoError(t, err)
		assert.Equal(t, 7.25, student.Time)
		assert.Empty(t, student.EmbeddingPath)
	})

	t.Run("accumulates deltas", func(t *testing.T) {
		require.NoError(t, students.AddStudent(ctx, "ACC", "acc.npy"))
		deltas := []float64{0.5, 1.25, 30.5, 0}
		want := 0.0
		for _, d := range deltas {
			require.NoError(t, students.AddStudentTime(ctx, "ACC", d))
			want += d
		}
		student, err := students.GetStudent(ctx, "ACC")
		require.NoError(t, err)
		assert.Equal(t, want, student.Time)
	})

	t.Run("rejects negative delta", func(t *testing.T) {
		err := students.AddStudentTime(ctx, "ACC", -1)
		assert.ErrorIs(t, err, core.ErrInvalidTimeDelta)
	})
}

func TestAddStudentTime_ConcurrentIncrements(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				assert.NoError(t, students.AddStudentTime(ctx, "R1", 1))
			}
		}()
	}
	wg.Wait()

	student, err := students.GetStudent(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, float64(workers*perWorker), student.Time)

	count, err := students.CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPutStudent(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, students.PutStudent(ctx, &core.Student{RollNo: "R1", EmbeddingPath: "p1.npy", Time: 42}))
	require.NoError(t, students.PutStudent(ctx, &core.Student{RollNo: "R1", EmbeddingPath: "p1b.npy", Time: 12}))

	student, err := students.GetStudent(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, &core.Student{RollNo: "R1", EmbeddingPath: "p1b.npy", Time: 12}, student)

	// The time index follows the replaced value
	old, err := students.GetStudentsByTimeRange(ctx, core.Between(40, 50))
	require.NoError(t, err)
	assert.Empty(t, old)

	err = students.PutStudent(ctx, &core.Student{RollNo: "R2", Time: -5})
	assert.ErrorIs(t, err, core.ErrInvalidTime)
}

func TestGetStudent_NotFound(t *testing.T) {
	students, _ := newTestRepositories(t)

	student, err := students.GetStudent(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, student)
}

func TestDeleteStudent(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, students.AddStudent(ctx, "R1", "p1.npy"))
	require.NoError(t, students.AddStudentTime(ctx, "R1", 5))
	require.NoError(t, students.DeleteStudent(ctx, "R1"))

	_, err := students.GetStudent(ctx, "R1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	all, err := students.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	matched, err := students.GetStudentsByTimeRange(ctx, core.AtLeast(0))
	require.NoError(t, err)
	assert.Empty(t, matched)

	t.Run("missing key is a no-op", func(t *testing.T) {
		assert.NoError(t, students.DeleteStudent(ctx, "never-existed"))
	})

	t.Run("recreated student starts fresh", func(t *testing.T) {
		require.NoError(t, students.AddStudent(ctx, "R1", "p1.npy"))
		student, err := students.GetStudent(ctx, "R1")
		require.NoError(t, err)
		assert.Equal(t, 0.0, student.Time)
	})
}

func TestCountStudents_TracksDistinctKeys(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	ops := []struct {
		add    bool
		rollNo string
		want   int64
	}{
		{true, "A", 1},
		{true, "B", 2},
		{true, "A", 2},
		{false, "C", 2},
		{false, "A", 1},
		{true, "C", 2},
		{false, "B", 1},
		{false, "C", 0},
	}

	for i, op := range ops {
		if op.add {
			require.NoError(t, students.AddStudent(ctx, op.rollNo, op.rollNo+".npy"))
		} else {
			require.NoError(t, students.DeleteStudent(ctx, op.rollNo))
		}
		count, err := students.CountStudents(ctx)
		require.NoError(t, err)
		assert.Equal(t, op.want, count, "after op %d", i)
	}
}

func TestListStudents_InsertionOrder(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	order := []string{"zeta", "alpha", "mid", "beta"}
	for _, rollNo := range order {
		require.NoError(t, students.AddStudent(ctx, rollNo, rollNo+".npy"))
	}
	// Updating an existing student keeps its position
	require.NoError(t, students.AddStudentTime(ctx, "zeta", 3))

	all, err := students.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(order))
	for i, rollNo := range order {
		assert.Equal(t, rollNo, all[i].RollNo)
	}
}

func TestListStudents_Empty(t *testing.T) {
	students, _ := newTestRepositories(t)

	all, err := students.ListStudents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestGetStudentsByTimeRange(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	times := map[string]float64{"A": 0, "B": 10, "C": 20, "D": 30.5, "E": 100}
	for rollNo, tm := range times {
		require.NoError(t, students.PutStudent(ctx, &core.Student{RollNo: rollNo, EmbeddingPath: rollNo + ".npy", Time: tm}))
	}

	tests := []struct {
		name string
		r    core.TimeRange
		want []string
	}{
		{"default range returns all", core.TimeRange{}, []string{"A", "B", "C", "D", "E"}},
		{"unbounded max", core.AtLeast(20), []string{"C", "D", "E"}},
		{"inclusive bounds", core.Between(10, 30.5), []string{"B", "C", "D"}},
		{"single point", core.Between(20, 20), []string{"C"}},
		{"empty window", core.Between(40, 90), []string{}},
		{"above everything", core.AtLeast(1000), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := students.GetStudentsByTimeRange(ctx, tt.r)
			require.NoError(t, err)
			got := make([]string, 0, len(matched))
			for _, s := range matched {
				assert.True(t, tt.r.Contains(s.Time))
				got = append(got, s.RollNo)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("inverted range is invalid", func(t *testing.T) {
		_, err := students.GetStudentsByTimeRange(ctx, core.Between(50, 10))
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
		assert.ErrorIs(t, err, core.ErrInvalidTimeRange)
	})
}

func TestStudentLifecycleScenario(t *testing.T) {
	students, _ := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, students.AddStudent(ctx, "R1", "p1.npy"))

	count, err := students.CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, students.AddStudentTime(ctx, "R1", 30.5))

	student, err := students.GetStudent(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 30.5, student.Time)

	require.NoError(t, students.DeleteStudent(ctx, "R1"))

	count, err = students.CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
