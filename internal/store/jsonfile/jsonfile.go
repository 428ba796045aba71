// Package jsonfile implements the document store backing the service: a
// single JSON file holding one object per collection, keyed by record id.
// All access goes through an in-process lock; every mutation rewrites the
// file atomically via a temp file and rename.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Collections present in every database file.
const (
	CollectionUsers        = "users"
	CollectionUniversities = "universities"
	CollectionRooms        = "rooms"
	CollectionTimes        = "times"
)

var defaultCollections = []string{
	CollectionUsers,
	CollectionUniversities,
	CollectionRooms,
	CollectionTimes,
}

// ErrNotFound is returned when a record id is absent from its collection.
var ErrNotFound = errors.New("jsonfile: not found")

// DB is a file-backed document store. Reads come from the in-memory map,
// so a write committed by one request is visible to the next immediately.
type DB struct {
	path string

	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

// Open loads the database file at path, creating it with empty collections
// if it does not exist yet.
func Open(path string) (*DB, error) {
	db := &DB{
		path: path,
		data: make(map[string]map[string]json.RawMessage, len(defaultCollections)),
	}
	for _, name := range defaultCollections {
		db.data[name] = make(map[string]json.RawMessage)
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		if err := db.save(); err != nil {
			return nil, err
		}
		return db, nil
	case err != nil:
		return nil, fmt.Errorf("read database file: %w", err)
	}

	if err := json.Unmarshal(raw, &db.data); err != nil {
		return nil, fmt.Errorf("parse database file %s: %w", path, err)
	}
	for _, name := range defaultCollections {
		if db.data[name] == nil {
			db.data[name] = make(map[string]json.RawMessage)
		}
	}
	return db, nil
}

// Path returns the location of the backing file.
func (db *DB) Path() string { return db.path }

// Ping reports whether the backing file is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := os.Stat(db.path)
	return err
}

// Get unmarshals the record into dst and reports whether it existed.
func (db *DB) Get(ctx context.Context, collection, id string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.getRecord(collection, id, dst)
}

// List invokes each for every record in the collection. Iteration order is
// unspecified. Returning an error from each stops the walk.
func (db *DB) List(ctx context.Context, collection string, each func(id string, raw json.RawMessage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.listRecords(collection, each)
}

// getRecord reads one record. Callers must hold db.mu.
func (db *DB) getRecord(collection, id string, dst any) (bool, error) {
	raw, ok := db.data[collection][id]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// listRecords walks one collection. Callers must hold db.mu.
func (db *DB) listRecords(collection string, each func(id string, raw json.RawMessage) error) error {
	for id, raw := range db.data[collection] {
		if err := each(id, raw); err != nil {
			return err
		}
	}
	return nil
}

// Put stores the record and persists the database.
func (db *DB) Put(ctx context.Context, collection, id string, v any) error {
	return db.Mutate(ctx, func(tx *Tx) error {
		return tx.Put(collection, id, v)
	})
}

// Delete removes the record and persists the database. Deleting an absent
// record returns ErrNotFound.
func (db *DB) Delete(ctx context.Context, collection, id string) error {
	return db.Mutate(ctx, func(tx *Tx) error {
		return tx.Delete(collection, id)
	})
}

// Tx batches mutations so multi-record changes (cascading deletes) hit the
// disk once, and exposes reads under the same write lock so callers can
// validate invariants (uniqueness, overlap, ownership) in the same critical
// section that commits. It is only valid for the duration of the Mutate
// callback.
type Tx struct {
	db *DB
}

// Get reads a record inside the transaction, seeing writes made earlier in
// the same transaction.
func (tx *Tx) Get(collection, id string, dst any) (bool, error) {
	return tx.db.getRecord(collection, id, dst)
}

// List walks a collection inside the transaction.
func (tx *Tx) List(collection string, each func(id string, raw json.RawMessage) error) error {
	return tx.db.listRecords(collection, each)
}

// Put stores a record inside the transaction.
func (tx *Tx) Put(collection, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	col := tx.db.data[collection]
	if col == nil {
		col = make(map[string]json.RawMessage)
		tx.db.data[collection] = col
	}
	col[id] = raw
	return nil
}

// Delete removes a record inside the transaction.
func (tx *Tx) Delete(collection, id string) error {
	col := tx.db.data[collection]
	if _, ok := col[id]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	delete(col, id)
	return nil
}

// Mutate runs fn under the global write lock and persists the database once
// on success. If fn returns an error the in-memory state may have partially
// changed but is not written to disk; callers treat that as fatal for the
// request and the next Open re-reads the last committed file.
func (db *DB) Mutate(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := fn(&Tx{db: db}); err != nil {
		return err
	}
	return db.save()
}

// save writes the whole dataset to a temp file and renames it over the
// database file. Callers must hold the write lock.
func (db *DB) save() error {
	raw, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(db.path), filepath.Base(db.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, db.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace database file: %w", err)
	}
	return nil
}
