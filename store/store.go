// Package store provides durable blob storage for ingested model files.
//
// Two backends exist: a local filesystem root and an S3 bucket/prefix.
// Keys are forward-slash paths; the orchestrator derives them from the
// model id and each entry's relative path, so the same content layout
// appears under either backend.
package store

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// ErrNoLocalPath is returned by ResolvePath for backends without a
// local filesystem presence. Callers fall back to byte copies.
var ErrNoLocalPath = errors.New("backend has no local path")

// Store abstracts the durable storage collaborator.
type Store interface {
	// Put streams r to the given key, returning the byte count written.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open reads back the object at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// ResolvePath maps key to an absolute local path, enabling the
	// hardlink copy strategy. Returns ErrNoLocalPath for remote backends.
	ResolvePath(key string) (string, error)

	// Backend returns the backend name ("fs" or "s3") for logs.
	Backend() string

	// Close releases client resources.
	Close() error
}

// StubStore is a test store that records writes in memory.
type StubStore struct {
	Objects map[string][]byte
	Deleted []string
	Closed  bool
	// FailPut, when set, is returned from every Put call.
	FailPut error
}

// NewStubStore creates an empty in-memory stub.
func NewStubStore() *StubStore {
	return &StubStore{Objects: make(map[string][]byte)}
}

// Put implements Store.
func (s *StubStore) Put(_ context.Context, key string, r io.Reader) (int64, error) {
	if s.FailPut != nil {
		return 0, s.FailPut
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.Objects[key] = data
	return int64(len(data)), nil
}

// Open implements Store.
func (s *StubStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.Objects[key]
	if !ok {
		return nil, NewStorageError(ErrNotFound, "read", key, errors.New("no such object"))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete implements Store.
func (s *StubStore) Delete(_ context.Context, key string) error {
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}

// ResolvePath implements Store. The stub has no local paths.
func (s *StubStore) ResolvePath(string) (string, error) {
	return "", ErrNoLocalPath
}

// Backend implements Store.
func (s *StubStore) Backend() string { return "stub" }

// Close implements Store.
func (s *StubStore) Close() error {
	s.Closed = true
	return nil
}

// Verify StubStore implements Store.
var _ Store = (*StubStore)(nil)
