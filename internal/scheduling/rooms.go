package scheduling

import (
	"context"
	"fmt"
	"strings"

	"roomtime.org/internal/ids"
	"roomtime.org/internal/model"
	"roomtime.org/internal/store/jsonfile"
)

// NewRoom is the payload for creating or updating a room. University is
// optional because managers never specify it: their own university is
// implied, and they may not reach into another one.
type NewRoom struct {
	University string `json:"university,omitempty"`
	Name       string `json:"name" validate:"required"`
}

// CreateRoom stores a new room. Admins must name the target university;
// managers must not.
func (s *Service) CreateRoom(ctx context.Context, actor model.User, data NewRoom) (any, error) {
	if err := s.checkPayload(data); err != nil {
		return nil, err
	}
	switch actor.Group {
	case model.GroupAdmin:
		if data.University == "" {
			return nil, fmt.Errorf("%w: you must specify a university to create this room in", ErrInvalidInput)
		}
	case model.GroupManager:
		if data.University != "" {
			return nil, fmt.Errorf("%w: you may not specify the university when creating a room", ErrInvalidInput)
		}
		data.University = actor.University
	default:
		// Route gating keeps other groups out; this is a backstop.
		return nil, fmt.Errorf("%w: you may not create rooms", ErrInvalidInput)
	}

	room := model.Room{ID: ids.New(), University: data.University, Name: strings.TrimSpace(data.Name)}
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		if err := validateRoom(tx, room); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionRooms, room.ID, room)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("room_id", room.ID).Info("room created")
	return roomView(actor, room), nil
}

// ListRooms returns all rooms for admins, and the caller's own
// university's rooms (without the university field) for everyone else.
func (s *Service) ListRooms(ctx context.Context, actor model.User) (any, error) {
	rooms, err := s.db.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Group == model.GroupAdmin {
		if rooms == nil {
			rooms = []model.Room{}
		}
		return rooms, nil
	}
	out := make([]model.UniversityRoom, 0, len(rooms))
	for _, room := range rooms {
		if room.University == actor.University {
			out = append(out, model.UniversityRoom{ID: room.ID, Name: room.Name})
		}
	}
	return out, nil
}

// UpdateRoom renames a room the actor owns. Managers cannot move a room to
// another university.
func (s *Service) UpdateRoom(ctx context.Context, actor model.User, id string, data NewRoom) (any, error) {
	if err := s.checkPayload(data); err != nil {
		return nil, err
	}
	if actor.Group == model.GroupManager && data.University != "" {
		return nil, fmt.Errorf("%w: you may not change the university of an existing room", ErrInvalidInput)
	}
	var room model.Room
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		existing, err := ownedRoomTx(tx, actor, id)
		if err != nil {
			return err
		}
		university := data.University
		if university == "" {
			university = existing.University
		}
		room = model.Room{ID: id, University: university, Name: strings.TrimSpace(data.Name)}
		if err := validateRoom(tx, room); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionRooms, id, room)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("room_id", id).Info("room updated")
	return roomView(actor, room), nil
}

// DeleteRoom removes a room the actor owns together with its scheduled
// times, as a single committed write.
func (s *Service) DeleteRoom(ctx context.Context, actor model.User, id string) error {
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		if _, err := ownedRoomTx(tx, actor, id); err != nil {
			return err
		}
		times, err := tx.Times()
		if err != nil {
			return err
		}
		if err := tx.Delete(jsonfile.CollectionRooms, id); err != nil {
			return err
		}
		for _, t := range times {
			if t.Room == id {
				if err := tx.Delete(jsonfile.CollectionTimes, t.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("room_id", id).Info("room deleted")
	return nil
}

// fetchOwnedRoom resolves a room the actor may operate on, for read paths.
func (s *Service) fetchOwnedRoom(ctx context.Context, actor model.User, id string) (model.Room, error) {
	room, ok, err := s.db.RoomByID(ctx, id)
	if err != nil {
		return model.Room{}, err
	}
	return resolveOwnedRoom(room, ok, actor, id)
}

// ownedRoomTx is the transaction-scoped variant used by mutating paths.
func ownedRoomTx(tx *jsonfile.Tx, actor model.User, id string) (model.Room, error) {
	room, ok, err := tx.RoomByID(id)
	if err != nil {
		return model.Room{}, err
	}
	return resolveOwnedRoom(room, ok, actor, id)
}

// resolveOwnedRoom applies the ownership rule. Rooms of other universities
// are reported as nonexistent rather than forbidden, so ids cannot be
// probed across tenants.
func resolveOwnedRoom(room model.Room, ok bool, actor model.User, id string) (model.Room, error) {
	if !ok || (actor.Group != model.GroupAdmin && actor.University != room.University) {
		return model.Room{}, fmt.Errorf("%w: no room with the id %q found", ErrInvalidInput, id)
	}
	return room, nil
}

func validateRoom(tx *jsonfile.Tx, room model.Room) error {
	rooms, err := tx.Rooms()
	if err != nil {
		return err
	}
	for _, other := range rooms {
		if other.Name == room.Name && other.University == room.University && other.ID != room.ID {
			return fmt.Errorf("%w: room with name %q already exists", ErrInvalidInput, room.Name)
		}
	}
	if _, ok, err := tx.UniversityByID(room.University); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: university with id %q does not exist", ErrInvalidInput, room.University)
	}
	return nil
}

func roomView(actor model.User, room model.Room) any {
	if actor.Group == model.GroupAdmin {
		return room
	}
	return model.UniversityRoom{ID: room.ID, Name: room.Name}
}
