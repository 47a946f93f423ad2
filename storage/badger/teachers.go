package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
)

// TeacherRepository implements storage.TeacherRepository for BadgerDB.
type TeacherRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TeacherRepository = (*TeacherRepository)(nil)

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(backend *Backend) (*TeacherRepository, error) {
	idSeq, err := backend.GetSequence(teacherIDSeq)
	if err != nil {
		return nil, err
	}

	return &TeacherRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TeacherRepository) Close() error {
	return r.idSeq.Release()
}

// EnsureIndexes is a no-op beyond checking the backend is open.
func (r *TeacherRepository) EnsureIndexes(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// ListTeachers returns all teachers in insertion order.
func (r *TeacherRepository) ListTeachers(ctx context.Context) ([]*core.Teacher, error) {
	teachers := []*core.Teacher{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(teacherOrderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			teacherID, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			_, teacher, err := r.readTeacher(tx, string(teacherID))
			if err != nil {
				return err
			}
			if teacher != nil {
				teachers = append(teachers, teacher)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return teachers, nil
}

// AddTeacher creates or updates a teacher's embedding path.
func (r *TeacherRepository) AddTeacher(ctx context.Context, teacherID, embeddingPath string) error {
	return r.PutTeacher(ctx, &core.Teacher{TeacherID: teacherID, EmbeddingPath: embeddingPath})
}

// PutTeacher creates or replaces a teacher.
func (r *TeacherRepository) PutTeacher(ctx context.Context, teacher *core.Teacher) error {
	if err := core.ValidateTeacher(teacher); err != nil {
		return err
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		seq, old, err := r.readTeacher(tx, teacher.TeacherID)
		if err != nil {
			return err
		}
		if old == nil {
			seq, err = nextSeq(r.idSeq)
			if err != nil {
				return err
			}
			if err := tx.Set(makeTeacherOrderKey(seq), []byte(teacher.TeacherID)); err != nil {
				return err
			}
		}
		return tx.Set(makeTeacherKey(teacher.TeacherID), storage.MarshalTeacherEntry(seq, teacher))
	})
}

// GetTeacher retrieves a teacher by ID.
func (r *TeacherRepository) GetTeacher(ctx context.Context, teacherID string) (*core.Teacher, error) {
	var result *core.Teacher
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		_, result, err = r.readTeacher(tx, teacherID)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTeacher removes a teacher and its order index entry.
func (r *TeacherRepository) DeleteTeacher(ctx context.Context, teacherID string) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		seq, old, err := r.readTeacher(tx, teacherID)
		if err != nil {
			return err
		}
		if old == nil {
			return nil
		}
		if err := tx.Delete(makeTeacherOrderKey(seq)); err != nil {
			return err
		}
		return tx.Delete(makeTeacherKey(teacherID))
	})
}

// CountTeachers returns the number of stored teachers.
func (r *TeacherRepository) CountTeachers(ctx context.Context) (int64, error) {
	return r.backend.countPrefix(teacherPrefix)
}

func (r *TeacherRepository) readTeacher(tx *badger.Txn, teacherID string) (uint64, *core.Teacher, error) {
	item, err := tx.Get(makeTeacherKey(teacherID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil, nil
		}
		return 0, nil, err
	}

	var seq uint64
	var teacher *core.Teacher
	err = item.Value(func(val []byte) error {
		var err error
		seq, teacher, err = storage.UnmarshalTeacherEntry(val)
		return err
	})
	return seq, teacher, err
}
