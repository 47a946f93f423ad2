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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/voicetrack/core"
)

// Stored entries are an insertion sequence number followed by the record.
// The sequence number lets backends without natural ordering list records
// in the order they were first created.

// MarshalStudentEntry serializes a Student with its insertion sequence number.
func MarshalStudentEntry(seq uint64, student *core.Student) []byte {
	buf := make([]byte, varint.Uint64.Size(seq)+core.StudentMUS.Size(*student))
	n := varint.Uint64.Marshal(seq, buf)
	core.StudentMUS.Marshal(*student, buf[n:])
	return buf
}

// UnmarshalStudentEntry deserializes a Student and its insertion sequence number.
func UnmarshalStudentEntry(data []byte) (uint64, *core.Student, error) {
	seq, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}
	student, m, err := core.StudentMUS.Unmarshal(data[n:])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n+m != len(data) {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n-m)
	}
	return seq, &student, nil
}

// MarshalTeacherEntry serializes a Teacher with its insertion sequence number.
func MarshalTeacherEntry(seq uint64, teacher *core.Teacher) []byte {
	buf := make([]byte, varint.Uint64.Size(seq)+core.TeacherMUS.Size(*teacher))
	n := varint.Uint64.Marshal(seq, buf)
	core.TeacherMUS.Marshal(*teacher, buf[n:])
	return buf
}

// UnmarshalTeacherEntry deserializes a Teacher and its insertion sequence number.
func UnmarshalTeacherEntry(data []byte) (uint64, *core.Teacher, error) {
	seq, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}
	teacher, m, err := core.TeacherMUS.Unmarshal(data[n:])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n+m != len(data) {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n-m)
	}
	return seq, &teacher, nil
}
