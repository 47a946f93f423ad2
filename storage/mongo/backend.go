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
	"log/slog"
	"time"

	"github.com/poiesic/voicetrack/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// StudentsCollection is the collection holding student documents.
	StudentsCollection = "students"
	// TeachersCollection is the collection holding teacher documents.
	TeachersCollection = "teachers"

	// DefaultTimeout bounds every store call made by the repositories.
	DefaultTimeout = 5 * time.Second
)

// Backend owns a MongoDB client and the database the repositories use.
type Backend struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(b *Backend) {
		if timeout > 0 {
			b.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Connect opens a client for uri, verifies the server is reachable and
// selects dbName. The caller must Close the returned Backend.
func Connect(ctx context.Context, uri, dbName string, opts ...Option) (*Backend, error) {
	b := &Backend{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(b.timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, classify("connect", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), b.timeout)
		defer cancelDisconnect()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("%w: ping %s: %w", storage.ErrConnection, dbName, err)
	}

	b.client = client
	b.db = client.Database(dbName)
	b.logger.Debug("connected to MongoDB", "database", dbName)
	return b, nil
}

// Close disconnects the client.
func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.client.Disconnect(ctx); err != nil {
		return classify("disconnect", err)
	}
	return nil
}

// Database returns the selected database handle.
func (b *Backend) Database() *mongo.Database {
	return b.db
}

// StudentRepository returns a repository over the students collection.
func (b *Backend) StudentRepository() *StudentRepository {
	return NewStudentRepository(b.db.Collection(StudentsCollection), b.timeout)
}

// TeacherRepository returns a repository over the teachers collection.
func (b *Backend) TeacherRepository() *TeacherRepository {
	return NewTeacherRepository(b.db.Collection(TeachersCollection), b.timeout)
}
