package badger

import (
	"encoding/binary"
	"math"
)

// Key prefixes for different data types
const (
	studentPrefix      = "stu:"
	studentOrderPrefix = "stuord:"
	studentTimePrefix  = "stutime:"
	studentIDSeq       = "stuseq"
	teacherPrefix      = "tea:"
	teacherOrderPrefix = "teaord:"
	teacherIDSeq       = "teaseq"
)

// makeStudentKey generates the primary key for a student.
func makeStudentKey(rollNo string) []byte {
	return append([]byte(studentPrefix), rollNo...)
}

// makeStudentOrderKey generates a key for the insertion order index.
// Format: prefix:seq
func makeStudentOrderKey(seq uint64) []byte {
	return makeOrderKey(studentOrderPrefix, seq)
}

// makeStudentTimeKey generates a composite key for the time index.
// Format: prefix:time:rollNo
func makeStudentTimeKey(t float64, rollNo string) []byte {
	return append(makePartialStudentTimeKey(t), rollNo...)
}

// makePartialStudentTimeKey generates a partial key for time range queries.
// Format: prefix:time
func makePartialStudentTimeKey(t float64) []byte {
	prefixBytes := []byte(studentTimePrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], sortableFloat(t))
	return buf
}

// timeFromStudentTimeKey extracts the time component of a time index key.
func timeFromStudentTimeKey(key []byte) float64 {
	offset := len(studentTimePrefix)
	return unsortableFloat(binary.BigEndian.Uint64(key[offset : offset+8]))
}

// makeTeacherKey generates the primary key for a teacher.
func makeTeacherKey(teacherID string) []byte {
	return append([]byte(teacherPrefix), teacherID...)
}

// makeTeacherOrderKey generates a key for the insertion order index.
func makeTeacherOrderKey(seq uint64) []byte {
	return makeOrderKey(teacherOrderPrefix, seq)
}

func makeOrderKey(prefix string, seq uint64) []byte {
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// sortableFloat maps a float64 onto a uint64 whose unsigned order matches
// the numeric order of the floats.
func sortableFloat(f float64) uint64 {
	if f == 0 {
		f = 0 // fold -0 into +0
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// unsortableFloat reverses sortableFloat.
func unsortableFloat(u uint64) float64 {
	if u&(1<<63) != 0 {
		return math.Float64frombits(u &^ (1 << 63))
	}
	return math.Float64frombits(^u)
}
