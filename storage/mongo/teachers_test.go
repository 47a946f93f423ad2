package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestTeacherRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		repo := NewTeacherRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "teacher_id", Value: "T1"}, {Key: "embedding_path", Value: "t1.npy"}},
			bson.D{{Key: "teacher_id", Value: "T2"}, {Key: "embedding_path", Value: "t2.npy"}},
		))

		teachers, err := repo.ListTeachers(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []*core.Teacher{
			{TeacherID: "T1", EmbeddingPath: "t1.npy"},
			{TeacherID: "T2", EmbeddingPath: "t2.npy"},
		}, teachers)
	})

	mt.Run("get not found", func(mt *mtest.T) {
		repo := NewTeacherRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		teacher, err := repo.GetTeacher(context.Background(), "missing")
		assert.ErrorIs(mt, err, storage.ErrNotFound)
		assert.Nil(mt, teacher)
	})

	mt.Run("add", func(mt *mtest.T) {
		repo := NewTeacherRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.AddTeacher(context.Background(), "T1", "t1.npy"))
	})

	mt.Run("add with empty id is not sent", func(mt *mtest.T) {
		repo := NewTeacherRepository(mt.Coll, time.Second)

		err := repo.AddTeacher(context.Background(), "", "t1.npy")
		assert.ErrorIs(mt, err, core.ErrEmptyTeacherID)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := NewTeacherRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int64(2)}},
		))

		n, err := repo.CountTeachers(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewTeacherRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.DeleteTeacher(context.Background(), "T1"))
	})
}
