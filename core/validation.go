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


package core

import (
	"fmt"
	"math"
)

// ValidateStudent validates a Student according to domain rules.
//
// Validation rules:
//   - RollNo must not be empty
//   - Time must be finite and non-negative
//
// NOT validated:
//   - EmbeddingPath (existence of the file is the caller's concern)
func ValidateStudent(student *Student) error {
	if student == nil {
		return fmt.Errorf("%w: student is nil", ErrInvalidStudent)
	}

	if err := ValidateRollNo(student.RollNo); err != nil {
		return err
	}

	if !isNonNegativeFinite(student.Time) {
		return fmt.Errorf("%w: %w", ErrInvalidStudent, ErrInvalidTime)
	}

	return nil
}

// ValidateTeacher validates a Teacher according to domain rules.
//
// Validation rules:
//   - TeacherID must not be empty
func ValidateTeacher(teacher *Teacher) error {
	if teacher == nil {
		return fmt.Errorf("%w: teacher is nil", ErrInvalidTeacher)
	}

	return ValidateTeacherID(teacher.TeacherID)
}

// ValidateRollNo checks that a student key is usable.
func ValidateRollNo(rollNo string) error {
	if rollNo == "" {
		return fmt.Errorf("%w: %w", ErrInvalidStudent, ErrEmptyRollNo)
	}
	return nil
}

// ValidateTeacherID checks that a teacher key is usable.
func ValidateTeacherID(teacherID string) error {
	if teacherID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTeacher, ErrEmptyTeacherID)
	}
	return nil
}

// ValidateTimeDelta checks that an interaction time increment keeps time non-decreasing.
func ValidateTimeDelta(delta float64) error {
	if !isNonNegativeFinite(delta) {
		return fmt.Errorf("%w: value %v", ErrInvalidTimeDelta, delta)
	}
	return nil
}

// ValidateTimeRange checks that both bounds are finite and Min <= Max.
func ValidateTimeRange(r TimeRange) error {
	if math.IsNaN(r.Min) || math.IsInf(r.Min, 0) {
		return fmt.Errorf("%w: min %v", ErrInvalidTimeRange, r.Min)
	}
	if r.Max == nil {
		return nil
	}
	max := *r.Max
	if math.IsNaN(max) || math.IsInf(max, 0) {
		return fmt.Errorf("%w: max %v", ErrInvalidTimeRange, max)
	}
	if max < r.Min {
		return fmt.Errorf("%w: max %v is below min %v", ErrInvalidTimeRange, max, r.Min)
	}
	return nil
}

func isNonNegativeFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
