package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"roomtime.org/internal/ids"
	"roomtime.org/internal/model"
	"roomtime.org/internal/store/jsonfile"
)

// UniversityData is the payload for creating or renaming a university.
type UniversityData struct {
	Name string `json:"name" validate:"required"`
}

// CreateUniversity stores a new university with a unique name.
func (s *Service) CreateUniversity(ctx context.Context, data UniversityData) (model.University, error) {
	university := model.University{ID: ids.New(), Name: strings.TrimSpace(data.Name)}
	if err := s.checkPayload(UniversityData{Name: university.Name}); err != nil {
		return model.University{}, err
	}
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		if err := validateUniversity(tx, university); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionUniversities, university.ID, university)
	})
	if err != nil {
		return model.University{}, err
	}
	s.log.WithField("university_id", university.ID).Info("university created")
	return university, nil
}

// ListUniversities returns every university record.
func (s *Service) ListUniversities(ctx context.Context) ([]model.University, error) {
	return s.db.Universities(ctx)
}

// UpdateUniversity renames an existing university.
func (s *Service) UpdateUniversity(ctx context.Context, id string, data UniversityData) (model.University, error) {
	university := model.University{ID: id, Name: strings.TrimSpace(data.Name)}
	if err := s.checkPayload(UniversityData{Name: university.Name}); err != nil {
		return model.University{}, err
	}
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		if _, ok, err := tx.UniversityByID(id); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: university with id %q does not exist", ErrInvalidInput, id)
		}
		if err := validateUniversity(tx, university); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionUniversities, id, university)
	})
	if err != nil {
		return model.University{}, err
	}
	s.log.WithField("university_id", id).Info("university updated")
	return university, nil
}

// DeleteUniversity removes a university and cascades: its rooms (and their
// scheduled times) are deleted, its users are disabled. The cascade reads
// and writes run under one write lock and commit to disk as one write, so
// a concurrent mutation can neither dodge the cascade nor break it halfway.
func (s *Service) DeleteUniversity(ctx context.Context, id string) error {
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		if _, ok, err := tx.UniversityByID(id); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: university with id %q does not exist", ErrInvalidInput, id)
		}

		rooms, err := tx.Rooms()
		if err != nil {
			return err
		}
		times, err := tx.Times()
		if err != nil {
			return err
		}
		users, err := tx.Users()
		if err != nil {
			return err
		}

		doomedRooms := make(map[string]bool)
		for _, room := range rooms {
			if room.University == id {
				doomedRooms[room.ID] = true
			}
		}

		if err := tx.Delete(jsonfile.CollectionUniversities, id); err != nil {
			return err
		}
		for roomID := range doomedRooms {
			if err := tx.Delete(jsonfile.CollectionRooms, roomID); err != nil {
				return err
			}
		}
		for _, t := range times {
			if doomedRooms[t.Room] {
				if err := tx.Delete(jsonfile.CollectionTimes, t.ID); err != nil {
					return err
				}
			}
		}
		for _, u := range users {
			if u.University == id && !u.Disabled {
				u.Disabled = true
				if err := tx.Put(jsonfile.CollectionUsers, u.ID, u); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("university_id", id).Info("university deleted")
	return nil
}

func validateUniversity(tx *jsonfile.Tx, university model.University) error {
	var conflict bool
	err := tx.List(jsonfile.CollectionUniversities, func(id string, raw json.RawMessage) error {
		var other model.University
		if err := json.Unmarshal(raw, &other); err != nil {
			return err
		}
		if other.Name == university.Name && other.ID != university.ID {
			conflict = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if conflict {
		return fmt.Errorf("%w: university with name %q already exists", ErrInvalidInput, university.Name)
	}
	return nil
}
