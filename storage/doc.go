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


// Package storage provides the storage abstraction layer for voicetrack.
//
// This package defines repository interfaces that decouple storage implementation
// from callers. Two backends implement them: MongoDB (storage/mongo), the
// production document store, and BadgerDB (storage/badger), an embedded store
// used offline and in tests.
//
// # Architecture
//
//   - Repository: index setup and resource release shared by all repositories
//   - StudentRepository: operations for student records
//   - TeacherRepository: operations for teacher records
//
// Every repository method returns an error. Failures are classified with the
// sentinel errors in this package and can be tested with errors.Is:
//
//	student, err := students.GetStudent(ctx, "R1")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // no such student
//	}
//
// # Lenient Access
//
// LenientStudents and LenientTeachers wrap the repositories for callers that
// must never fail: errors are logged and replaced with empty results, nil
// records or zero counts.
//
//	students := storage.NewLenientStudents(repo, logger)
//	students.AddTime(ctx, "R1", 30.5)
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	students, teachers, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
