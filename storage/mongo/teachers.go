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


package mongo

import (
	"context"
	"time"

	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TeacherRepository implements storage.TeacherRepository over a MongoDB collection.
type TeacherRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ storage.TeacherRepository = (*TeacherRepository)(nil)

// NewTeacherRepository creates a repository over coll.
func NewTeacherRepository(coll *mongo.Collection, timeout time.Duration) *TeacherRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TeacherRepository{coll: coll, timeout: timeout}
}

// Close releases resources. The client is owned by the Backend.
func (r *TeacherRepository) Close() error {
	return nil
}

// EnsureIndexes creates the unique teacher_id index.
func (r *TeacherRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldTeacherID, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return classify("create teacher indexes", err)
	}
	return nil
}

// ListTeachers returns all teachers in insertion order.
func (r *TeacherRepository) ListTeachers(ctx context.Context) ([]*core.Teacher, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(withoutID).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, classify("list teachers", err)
	}

	var docs []teacherDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify("list teachers", err)
	}
	return teachersFromDocuments(docs)
}

// AddTeacher creates or updates a teacher's embedding path.
func (r *TeacherRepository) AddTeacher(ctx context.Context, teacherID, embeddingPath string) error {
	if err := core.ValidateTeacherID(teacherID); err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: fieldEmbeddingPath, Value: embeddingPath}}}}
	return r.upsert(ctx, "add teacher", teacherID, update)
}

// PutTeacher creates or replaces every field of a teacher.
func (r *TeacherRepository) PutTeacher(ctx context.Context, teacher *core.Teacher) error {
	if err := core.ValidateTeacher(teacher); err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldTeacherID, Value: teacher.TeacherID},
		{Key: fieldEmbeddingPath, Value: teacher.EmbeddingPath},
	}}}
	return r.upsert(ctx, "put teacher", teacher.TeacherID, update)
}

// GetTeacher retrieves a teacher by ID.
func (r *TeacherRepository) GetTeacher(ctx context.Context, teacherID string) (*core.Teacher, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc teacherDocument
	err := r.coll.FindOne(ctx,
		bson.D{{Key: fieldTeacherID, Value: teacherID}},
		options.FindOne().SetProjection(withoutID),
	).Decode(&doc)
	if err != nil {
		return nil, classify("get teacher", err)
	}
	return doc.toTeacher()
}

// DeleteTeacher removes a teacher.
func (r *TeacherRepository) DeleteTeacher(ctx context.Context, teacherID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: fieldTeacherID, Value: teacherID}}); err != nil {
		return classify("delete teacher", err)
	}
	return nil
}

// CountTeachers returns the number of stored teachers.
func (r *TeacherRepository) CountTeachers(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, classify("count teachers", err)
	}
	return n, nil
}

func (r *TeacherRepository) upsert(ctx context.Context, op, teacherID string, update bson.D) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: fieldTeacherID, Value: teacherID}},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return classify(op, err)
	}
	return nil
}
