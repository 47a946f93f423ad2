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
	"fmt"
	"time"

	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StudentRepository implements storage.StudentRepository over a MongoDB collection.
type StudentRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ storage.StudentRepository = (*StudentRepository)(nil)

// NewStudentRepository creates a repository over coll.
// Every call is bounded by timeout.
func NewStudentRepository(coll *mongo.Collection, timeout time.Duration) *StudentRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StudentRepository{coll: coll, timeout: timeout}
}

// Close releases resources. The client is owned by the Backend.
func (r *StudentRepository) Close() error {
	return nil
}

// EnsureIndexes creates the unique roll_no index and the time index.
func (r *StudentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: fieldRollNo, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: fieldTime, Value: 1}},
		},
	})
	if err != nil {
		return classify("create student indexes", err)
	}
	return nil
}

// ListStudents returns all students in insertion order.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]*core.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(withoutID).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, "list students", bson.D{}, opts)
}

// AddStudent creates or updates a student's embedding path.
func (r *StudentRepository) AddStudent(ctx context.Context, rollNo, embeddingPath string) error {
	if err := core.ValidateRollNo(rollNo); err != nil {
		return err
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: fieldEmbeddingPath, Value: embeddingPath}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: fieldTime, Value: 0.0}}},
	}
	return r.upsert(ctx, "add student", rollNo, update)
}

// AddStudentTime increments a student's cumulative time.
func (r *StudentRepository) AddStudentTime(ctx context.Context, rollNo string, delta float64) error {
	if err := core.ValidateRollNo(rollNo); err != nil {
		return err
	}
	if err := core.ValidateTimeDelta(delta); err != nil {
		return err
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: fieldTime, Value: delta}}}}
	return r.upsert(ctx, "update student time", rollNo, update)
}

// PutStudent creates or replaces every field of a student.
func (r *StudentRepository) PutStudent(ctx context.Context, student *core.Student) error {
	if err := core.ValidateStudent(student); err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldRollNo, Value: student.RollNo},
		{Key: fieldEmbeddingPath, Value: student.EmbeddingPath},
		{Key: fieldTime, Value: student.Time},
	}}}
	return r.upsert(ctx, "put student", student.RollNo, update)
}

// GetStudent retrieves a student by roll number.
func (r *StudentRepository) GetStudent(ctx context.Context, rollNo string) (*core.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc studentDocument
	err := r.coll.FindOne(ctx,
		bson.D{{Key: fieldRollNo, Value: rollNo}},
		options.FindOne().SetProjection(withoutID),
	).Decode(&doc)
	if err != nil {
		return nil, classify("get student", err)
	}
	return doc.toStudent()
}

// DeleteStudent removes a student.
func (r *StudentRepository) DeleteStudent(ctx context.Context, rollNo string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: fieldRollNo, Value: rollNo}}); err != nil {
		return classify("delete student", err)
	}
	return nil
}

// CountStudents returns the number of stored students.
func (r *StudentRepository) CountStudents(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, classify("count students", err)
	}
	return n, nil
}

// GetStudentsByTimeRange returns students inside the range, ordered by time.
func (r *StudentRepository) GetStudentsByTimeRange(ctx context.Context, tr core.TimeRange) ([]*core.Student, error) {
	if err := core.ValidateTimeRange(tr); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(withoutID).
		SetSort(bson.D{{Key: fieldTime, Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, "get students by time range", timeRangeFilter(tr), opts)
}

func (r *StudentRepository) upsert(ctx context.Context, op, rollNo string, update bson.D) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: fieldRollNo, Value: rollNo}},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return classify(op, err)
	}
	return nil
}

func (r *StudentRepository) find(ctx context.Context, op string, filter bson.D, opts *options.FindOptions) ([]*core.Student, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(op, err)
	}

	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify(op, err)
	}
	return studentsFromDocuments(docs)
}
