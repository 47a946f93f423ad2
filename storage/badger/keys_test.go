package badger

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortableFloatOrder(t *testing.T) {
	values := []float64{math.Inf(-1), -1e9, -30.5, -1, -math.SmallestNonzeroFloat64, 0, math.SmallestNonzeroFloat64, 1, 30.5, 1e9, math.Inf(1)}

	for i := 0; i < len(values)-1; i++ {
		a := makePartialStudentTimeKey(values[i])
		b := makePartialStudentTimeKey(values[i+1])
		assert.Equal(t, -1, bytes.Compare(a, b), "%v should sort before %v", values[i], values[i+1])
	}
}

func TestSortableFloatRoundTrip(t *testing.T) {
	for _, v := range []float64{-30.5, 0, 0.1, 30.5, 86400} {
		key := makeStudentTimeKey(v, "R1")
		assert.Equal(t, v, timeFromStudentTimeKey(key))
	}
}

func TestSortableFloatNegativeZero(t *testing.T) {
	assert.Equal(t, makePartialStudentTimeKey(0), makePartialStudentTimeKey(math.Copysign(0, -1)))
}

func TestKeyPrefixesDoNotOverlap(t *testing.T) {
	student := makeStudentKey("R1")
	assert.False(t, bytes.HasPrefix(makeStudentOrderKey(1), []byte(studentPrefix)))
	assert.False(t, bytes.HasPrefix(makeStudentTimeKey(1, "R1"), []byte(studentPrefix)))
	assert.False(t, bytes.HasPrefix([]byte(studentIDSeq), []byte(studentPrefix)))
	assert.True(t, bytes.HasPrefix(student, []byte(studentPrefix)))
	assert.False(t, bytes.HasPrefix(makeTeacherOrderKey(1), []byte(teacherPrefix)))
	assert.False(t, bytes.HasPrefix([]byte(teacherIDSeq), []byte(teacherPrefix)))
}
