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

import "errors"

// Domain validation errors
var (
	// ErrInvalidStudent indicates a Student failed validation.
	ErrInvalidStudent = errors.New("invalid student")

	// ErrInvalidTeacher indicates a Teacher failed validation.
	ErrInvalidTeacher = errors.New("invalid teacher")

	// ErrEmptyRollNo indicates the roll number is empty.
	ErrEmptyRollNo = errors.New("roll number cannot be empty")

	// ErrEmptyTeacherID indicates the teacher ID is empty.
	ErrEmptyTeacherID = errors.New("teacher ID cannot be empty")

	// ErrInvalidTime indicates a stored interaction time is negative or not finite.
	ErrInvalidTime = errors.New("time must be a finite, non-negative number")

	// ErrInvalidTimeDelta indicates a time increment is negative or not finite.
	ErrInvalidTimeDelta = errors.New("time delta must be a finite, non-negative number")

	// ErrInvalidTimeRange indicates the range bounds are inverted or not finite.
	ErrInvalidTimeRange = errors.New("invalid time range")
)
