package mongo

import (
	"fmt"

	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
	"go.mongodb.org/mongo-driver/bson"
)

// Field names as stored in the collections.
const (
	fieldRollNo        = "roll_no"
	fieldTeacherID     = "teacher_id"
	fieldEmbeddingPath = "embedding_path"
	fieldTime          = "time"
)

// withoutID strips the internal identity field from returned documents.
var withoutID = bson.D{{Key: "_id", Value: 0}}

// studentDocument is the stored form of a student.
// Documents created by a time increment have no embedding_path; those
// created before time defaults were written may have no time.
type studentDocument struct {
	RollNo        string  `bson:"roll_no"`
	EmbeddingPath string  `bson:"embedding_path,omitempty"`
	Time          float64 `bson:"time"`
}

func (d *studentDocument) toStudent() (*core.Student, error) {
	if d.RollNo == "" {
		return nil, fmt.Errorf("%w: student document without %s", storage.ErrSerializationFailed, fieldRollNo)
	}
	return &core.Student{
		RollNo:        d.RollNo,
		EmbeddingPath: d.EmbeddingPath,
		Time:          d.Time,
	}, nil
}

type teacherDocument struct {
	TeacherID     string `bson:"teacher_id"`
	EmbeddingPath string `bson:"embedding_path,omitempty"`
}

func (d *teacherDocument) toTeacher() (*core.Teacher, error) {
	if d.TeacherID == "" {
		return nil, fmt.Errorf("%w: teacher document without %s", storage.ErrSerializationFailed, fieldTeacherID)
	}
	return &core.Teacher{
		TeacherID:     d.TeacherID,
		EmbeddingPath: d.EmbeddingPath,
	}, nil
}

func studentsFromDocuments(docs []studentDocument) ([]*core.Student, error) {
	students := make([]*core.Student, 0, len(docs))
	for i := range docs {
		student, err := docs[i].toStudent()
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, nil
}

func teachersFromDocuments(docs []teacherDocument) ([]*core.Teacher, error) {
	teachers := make([]*core.Teacher, 0, len(docs))
	for i := range docs {
		teacher, err := docs[i].toTeacher()
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}
	return teachers, nil
}

// timeRangeFilter builds the inclusive time range filter.
func timeRangeFilter(r core.TimeRange) bson.D {
	bounds := bson.D{{Key: "$gte", Value: r.Min}}
	if r.Max != nil {
		bounds = append(bounds, bson.E{Key: "$lte", Value: *r.Max})
	}
	return bson.D{{Key: fieldTime, Value: bounds}}
}
