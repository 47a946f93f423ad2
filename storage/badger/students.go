package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/voicetrack/core"
	"github.com/poiesic/voicetrack/storage"
)

// StudentRepository implements storage.StudentRepository for BadgerDB.
type StudentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.StudentRepository = (*StudentRepository)(nil)

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(backend *Backend) (*StudentRepository, error) {
	idSeq, err := backend.GetSequence(studentIDSeq)
	if err != nil {
		return nil, err
	}

	return &StudentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *StudentRepository) Close() error {
	return r.idSeq.Release()
}

// EnsureIndexes is a no-op beyond checking the backend is open.
// The roll number and time indexes are maintained on every write.
func (r *StudentRepository) EnsureIndexes(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// ListStudents returns all students in insertion order.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]*core.Student, error) {
	students := []*core.Student{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(studentOrderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			rollNo, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			_, student, err := r.readStudent(tx, string(rollNo))
			if err != nil {
				return err
			}
			if student != nil {
				students = append(students, student)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return students, nil
}

// AddStudent creates or updates a student's embedding path.
func (r *StudentRepository) AddStudent(ctx context.Context, rollNo, embeddingPath string) error {
	if err := core.ValidateRollNo(rollNo); err != nil {
		return err
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		seq, old, err := r.readStudent(tx, rollNo)
		if err != nil {
			return err
		}
		updated := core.Student{RollNo: rollNo}
		if old != nil {
			updated = *old
		}
		updated.EmbeddingPath = embeddingPath
		return r.writeStudent(tx, seq, old, &updated)
	})
}

// AddStudentTime increments a student's cumulative time.
func (r *StudentRepository) AddStudentTime(ctx context.Context, rollNo string, delta float64) error {
	if err := core.ValidateRollNo(rollNo); err != nil {
		return err
	}
	if err := core.ValidateTimeDelta(delta); err != nil {
		return err
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		seq, old, err := r.readStudent(tx, rollNo)
		if err != nil {
			return err
		}
		updated := core.Student{RollNo: rollNo}
		if old != nil {
			updated = *old
		}
		updated.Time += delta
		return r.writeStudent(tx, seq, old, &updated)
	})
}

// PutStudent creates or replaces every field of a student.
func (r *StudentRepository) PutStudent(ctx context.Context, student *core.Student) error {
	if err := core.ValidateStudent(student); err != nil {
		return err
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		seq, old, err := r.readStudent(tx, student.RollNo)
		if err != nil {
			return err
		}
		updated := *student
		return r.writeStudent(tx, seq, old, &updated)
	})
}

// GetStudent retrieves a student by roll number.
func (r *StudentRepository) GetStudent(ctx context.Context, rollNo string) (*core.Student, error) {
	var result *core.Student
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		_, result, err = r.readStudent(tx, rollNo)
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

// DeleteStudent removes a student and its index entries.
func (r *StudentRepository) DeleteStudent(ctx context.Context, rollNo string) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		seq, old, err := r.readStudent(tx, rollNo)
		if err != nil {
			return err
		}
		if old == nil {
			return nil
		}
		if err := tx.Delete(makeStudentOrderKey(seq)); err != nil {
			return err
		}
		if err := tx.Delete(makeStudentTimeKey(old.Time, old.RollNo)); err != nil {
			return err
		}
		return tx.Delete(makeStudentKey(rollNo))
	})
}

// CountStudents returns the number of stored students.
func (r *StudentRepository) CountStudents(ctx context.Context) (int64, error) {
	return r.backend.countPrefix(studentPrefix)
}

// GetStudentsByTimeRange returns students inside the range, ordered by time.
func (r *StudentRepository) GetStudentsByTimeRange(ctx context.Context, tr core.TimeRange) ([]*core.Student, error) {
	if err := core.ValidateTimeRange(tr); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	students := []*core.Student{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(studentTimePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makePartialStudentTimeKey(tr.Min)); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			t := timeFromStudentTimeKey(item.Key())
			if !tr.Contains(t) {
				break
			}
			rollNo, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			_, student, err := r.readStudent(tx, string(rollNo))
			if err != nil {
				return err
			}
			if student != nil {
				students = append(students, student)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return students, nil
}

// readStudent reads a student and its insertion sequence within a transaction.
// Returns a nil student if the key does not exist.
func (r *StudentRepository) readStudent(tx *badger.Txn, rollNo string) (uint64, *core.Student, error) {
	item, err := tx.Get(makeStudentKey(rollNo))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil, nil
		}
		return 0, nil, err
	}

	var seq uint64
	var student *core.Student
	err = item.Value(func(val []byte) error {
		var err error
		seq, student, err = storage.UnmarshalStudentEntry(val)
		return err
	})
	return seq, student, err
}

// writeStudent stores updated and keeps the order and time indexes in step with it.
// old is the currently stored record, or nil when updated is new.
func (r *StudentRepository) writeStudent(tx *badger.Txn, seq uint64, old, updated *core.Student) error {
	if old == nil {
		var err error
		seq, err = nextSeq(r.idSeq)
		if err != nil {
			return err
		}
		if err := tx.Set(makeStudentOrderKey(seq), []byte(updated.RollNo)); err != nil {
			return err
		}
	}

	if old == nil || old.Time != updated.Time {
		if old != nil {
			if err := tx.Delete(makeStudentTimeKey(old.Time, old.RollNo)); err != nil {
				return err
			}
		}
		if err := tx.Set(makeStudentTimeKey(updated.Time, updated.RollNo), []byte(updated.RollNo)); err != nil {
			return err
		}
	}

	return tx.Set(makeStudentKey(updated.RollNo), storage.MarshalStudentEntry(seq, updated))
}
