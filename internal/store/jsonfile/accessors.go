package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"

	"roomtime.org/internal/model"
)

// Typed accessors over the raw collections. Lookups by secondary attributes
// are linear scans; acceptable at this dataset size.
// TODO: add a username index if user counts ever make the scan noticeable.

// UserByID fetches a user record by primary key.
func (db *DB) UserByID(ctx context.Context, id string) (model.User, bool, error) {
	var u model.User
	ok, err := db.Get(ctx, CollectionUsers, id, &u)
	return u, ok, err
}

// UserByUsername scans the users collection for a matching username.
func (db *DB) UserByUsername(ctx context.Context, username string) (model.User, bool, error) {
	var found model.User
	var ok bool
	err := db.List(ctx, CollectionUsers, func(id string, raw json.RawMessage) error {
		var u model.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return fmt.Errorf("decode %s/%s: %w", CollectionUsers, id, err)
		}
		if u.Username == username {
			found = u
			ok = true
		}
		return nil
	})
	return found, ok, err
}

// Users returns all user records.
func (db *DB) Users(ctx context.Context) ([]model.User, error) {
	return listAll[model.User](ctx, db, CollectionUsers)
}

// UniversityByID fetches a university record by primary key.
func (db *DB) UniversityByID(ctx context.Context, id string) (model.University, bool, error) {
	var u model.University
	ok, err := db.Get(ctx, CollectionUniversities, id, &u)
	return u, ok, err
}

// Universities returns all university records.
func (db *DB) Universities(ctx context.Context) ([]model.University, error) {
	return listAll[model.University](ctx, db, CollectionUniversities)
}

// RoomByID fetches a room record by primary key.
func (db *DB) RoomByID(ctx context.Context, id string) (model.Room, bool, error) {
	var r model.Room
	ok, err := db.Get(ctx, CollectionRooms, id, &r)
	return r, ok, err
}

// Rooms returns all room records.
func (db *DB) Rooms(ctx context.Context) ([]model.Room, error) {
	return listAll[model.Room](ctx, db, CollectionRooms)
}

// TimeByID fetches a reservation record by primary key.
func (db *DB) TimeByID(ctx context.Context, id string) (model.Time, bool, error) {
	var t model.Time
	ok, err := db.Get(ctx, CollectionTimes, id, &t)
	return t, ok, err
}

// Times returns all reservation records.
func (db *DB) Times(ctx context.Context) ([]model.Time, error) {
	return listAll[model.Time](ctx, db, CollectionTimes)
}

func listAll[T any](ctx context.Context, db *DB, collection string) ([]T, error) {
	var out []T
	err := db.List(ctx, collection, func(id string, raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transaction-scoped counterparts, used when validation and the dependent
// write must happen in one critical section.

// UserByID fetches a user record inside the transaction.
func (tx *Tx) UserByID(id string) (model.User, bool, error) {
	var u model.User
	ok, err := tx.Get(CollectionUsers, id, &u)
	return u, ok, err
}

// UserByUsername scans the users collection inside the transaction.
func (tx *Tx) UserByUsername(username string) (model.User, bool, error) {
	var found model.User
	var ok bool
	err := tx.List(CollectionUsers, func(id string, raw json.RawMessage) error {
		var u model.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return fmt.Errorf("decode %s/%s: %w", CollectionUsers, id, err)
		}
		if u.Username == username {
			found = u
			ok = true
		}
		return nil
	})
	return found, ok, err
}

// Users returns all user records inside the transaction.
func (tx *Tx) Users() ([]model.User, error) {
	return listAllTx[model.User](tx, CollectionUsers)
}

// UniversityByID fetches a university record inside the transaction.
func (tx *Tx) UniversityByID(id string) (model.University, bool, error) {
	var u model.University
	ok, err := tx.Get(CollectionUniversities, id, &u)
	return u, ok, err
}

// RoomByID fetches a room record inside the transaction.
func (tx *Tx) RoomByID(id string) (model.Room, bool, error) {
	var r model.Room
	ok, err := tx.Get(CollectionRooms, id, &r)
	return r, ok, err
}

// Rooms returns all room records inside the transaction.
func (tx *Tx) Rooms() ([]model.Room, error) {
	return listAllTx[model.Room](tx, CollectionRooms)
}

// TimeByID fetches a reservation record inside the transaction.
func (tx *Tx) TimeByID(id string) (model.Time, bool, error) {
	var t model.Time
	ok, err := tx.Get(CollectionTimes, id, &t)
	return t, ok, err
}

// Times returns all reservation records inside the transaction.
func (tx *Tx) Times() ([]model.Time, error) {
	return listAllTx[model.Time](tx, CollectionTimes)
}

func listAllTx[T any](tx *Tx, collection string) ([]T, error) {
	var out []T
	err := tx.List(collection, func(id string, raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
