// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/pebbledb"

	"github.com/luxfi/adcat/pkg/errs"
)

// Backend names a database implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendPebble Backend = "pebble"
)

// Storage wraps luxfi's database interface. Every write returns only after
// the backend has accepted it; failures surface as errs.ErrStorageFailure.
type Storage struct {
	db database.Database
}

// NewStorage creates a new storage instance using luxfi/database
func NewStorage(backend Backend, path string) (*Storage, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendPebble, "":
		if path == "" {
			return nil, errs.Invalid("pebble storage needs a path")
		}
		// pebbledb syncs every write and batch before returning
		db, err := pebbledb.New(path, 0, 0, "", false)
		if err != nil {
			return nil, errs.Storage("open pebble", err)
		}
		return &Storage{db: db}, nil
	default:
		return nil, errs.Invalid("unknown storage backend %q", backend)
	}
}

// NewMemory creates an in-memory storage, used by tests and the memory backend
func NewMemory() *Storage {
	return &Storage{db: memdb.New()}
}

// Wrap adapts an already opened database
func Wrap(db database.Database) *Storage {
	return &Storage{db: db}
}

// Put stores a key-value pair
func (s *Storage) Put(key, value []byte) error {
	if err := s.db.Put(key, value); err != nil {
		return errs.Storage("put", err)
	}
	return nil
}

// Get retrieves a value by key, returning errs.ErrNotFound for a missing key
func (s *Storage) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errs.NotFound("key", string(key))
	}
	if err != nil {
		return nil, errs.Storage("get", err)
	}
	return value, nil
}

// Has checks if a key exists
func (s *Storage) Has(key []byte) (bool, error) {
	ok, err := s.db.Has(key)
	if err != nil {
		return false, errs.Storage("has", err)
	}
	return ok, nil
}

// PutJSON stores v encoded as JSON
func (s *Storage) PutJSON(key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(key, value)
}

// GetJSON decodes the value at key into v
func (s *Storage) GetJSON(key []byte, v any) error {
	value, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(value, v); err != nil {
		return errs.Storage("decode "+string(key), err)
	}
	return nil
}

// Scan calls fn for every key under prefix in key order. The slices passed to
// fn are only valid for the duration of the call.
func (s *Storage) Scan(prefix []byte, fn func(key, value []byte) error) error {
	it := s.db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	for it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return errs.Storage("scan", err)
	}
	return nil
}

// ScanJSON decodes every value under prefix into a T, in key order
func ScanJSON[T any](s *Storage, prefix []byte) ([]T, error) {
	var out []T
	err := s.Scan(prefix, func(key, value []byte) error {
		var v T
		if err := json.Unmarshal(value, &v); err != nil {
			return errs.Storage("decode "+string(key), err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// NewBatch creates a new batch for atomic operations
func (s *Storage) NewBatch() *Batch {
	return &Batch{b: s.db.NewBatch()}
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Batch collects writes that are applied together by Write
type Batch struct {
	b database.Batch
}

// Put queues a key-value pair
func (b *Batch) Put(key, value []byte) error {
	if err := b.b.Put(key, value); err != nil {
		return errs.Storage("batch put", err)
	}
	return nil
}

// PutJSON queues v encoded as JSON
func (b *Batch) PutJSON(key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return b.Put(key, value)
}

// Write applies the queued writes
func (b *Batch) Write() error {
	if err := b.b.Write(); err != nil {
		return errs.Storage("write batch", err)
	}
	return nil
}
