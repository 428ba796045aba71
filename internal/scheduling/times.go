package scheduling

import (
	"context"
	"fmt"
	"time"

	"roomtime.org/internal/ids"
	"roomtime.org/internal/model"
	"roomtime.org/internal/store/jsonfile"
)

// NewTime is the payload for creating or updating a scheduled time.
// Registrant is optional; when empty it defaults to the acting user, and
// personnel may never set it to anyone else.
type NewTime struct {
	Room       string    `json:"room" validate:"required"`
	Start      time.Time `json:"start" validate:"required"`
	End        time.Time `json:"end" validate:"required"`
	Registrant string    `json:"registrant,omitempty"`
}

// TimeListing is the projection returned by ListTimes; the room is implied
// by the query.
type TimeListing struct {
	ID         string    `json:"id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Registrant string    `json:"registrant"`
}

// CreateTime registers a reservation in a room the actor owns. The room
// ownership and overlap checks run in the same critical section as the
// write, so two concurrent requests cannot both claim one slot.
func (s *Service) CreateTime(ctx context.Context, actor model.User, data NewTime) (model.Time, error) {
	if err := s.checkPayload(data); err != nil {
		return model.Time{}, err
	}
	if !privilegedOverTimes(actor) && data.Registrant != "" && data.Registrant != actor.ID {
		return model.Time{}, fmt.Errorf("%w: you may not register a new time under a different user", ErrInvalidInput)
	}
	if data.Registrant == "" {
		data.Registrant = actor.ID
	}

	t := model.Time{
		ID:         ids.New(),
		Room:       data.Room,
		Start:      data.Start,
		End:        data.End,
		Registrant: data.Registrant,
	}
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		if _, err := ownedRoomTx(tx, actor, t.Room); err != nil {
			return err
		}
		if err := validateTime(tx, t); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionTimes, t.ID, t)
	})
	if err != nil {
		return model.Time{}, err
	}
	s.log.WithField("time_id", t.ID).Info("time created")
	return t, nil
}

// ListTimes returns the reservations of one room the actor owns.
func (s *Service) ListTimes(ctx context.Context, actor model.User, roomID string) ([]TimeListing, error) {
	if _, err := s.fetchOwnedRoom(ctx, actor, roomID); err != nil {
		return nil, err
	}
	times, err := s.db.Times(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TimeListing, 0, len(times))
	for _, t := range times {
		if t.Room == roomID {
			out = append(out, TimeListing{ID: t.ID, Start: t.Start, End: t.End, Registrant: t.Registrant})
		}
	}
	return out, nil
}

// UpdateTime rewrites a reservation. Personnel may only touch their own
// registrations and may not hand them to another user.
func (s *Service) UpdateTime(ctx context.Context, actor model.User, id string, data NewTime) (model.Time, error) {
	if err := s.checkPayload(data); err != nil {
		return model.Time{}, err
	}
	var t model.Time
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		existing, err := ownedTimeTx(tx, actor, id)
		if err != nil {
			return err
		}
		if _, err := ownedRoomTx(tx, actor, data.Room); err != nil {
			return err
		}
		if !privilegedOverTimes(actor) {
			if existing.Registrant != actor.ID {
				return fmt.Errorf("%w: you may not change details of registered times you did not create", ErrInvalidInput)
			}
			if data.Registrant != "" && data.Registrant != actor.ID {
				return fmt.Errorf("%w: you may not change the registrant of your own time", ErrInvalidInput)
			}
		}
		registrant := data.Registrant
		if registrant == "" {
			registrant = existing.Registrant
		}

		t = model.Time{
			ID:         id,
			Room:       data.Room,
			Start:      data.Start,
			End:        data.End,
			Registrant: registrant,
		}
		if err := validateTime(tx, t); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionTimes, id, t)
	})
	if err != nil {
		return model.Time{}, err
	}
	s.log.WithField("time_id", id).Info("time updated")
	return t, nil
}

// DeleteTime removes a reservation under the same ownership rules as
// UpdateTime.
func (s *Service) DeleteTime(ctx context.Context, actor model.User, id string) error {
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		t, err := ownedTimeTx(tx, actor, id)
		if err != nil {
			return err
		}
		if !privilegedOverTimes(actor) && t.Registrant != actor.ID {
			return fmt.Errorf("%w: you may not delete registered times you did not create", ErrInvalidInput)
		}
		return tx.Delete(jsonfile.CollectionTimes, id)
	})
	if err != nil {
		return err
	}
	s.log.WithField("time_id", id).Info("time deleted")
	return nil
}

// ownedTimeTx resolves a reservation whose room the actor owns; like
// rooms, foreign reservations read as nonexistent.
func ownedTimeTx(tx *jsonfile.Tx, actor model.User, id string) (model.Time, error) {
	nonexistent := fmt.Errorf("%w: no time with the id %q found", ErrInvalidInput, id)
	t, ok, err := tx.TimeByID(id)
	if err != nil {
		return model.Time{}, err
	}
	if !ok {
		return model.Time{}, nonexistent
	}
	room, ok, err := tx.RoomByID(t.Room)
	if err != nil {
		return model.Time{}, err
	}
	if actor.Group != model.GroupAdmin && (!ok || actor.University != room.University) {
		return model.Time{}, nonexistent
	}
	return t, nil
}

func validateTime(tx *jsonfile.Tx, t model.Time) error {
	if !t.Start.Before(t.End) {
		return fmt.Errorf("%w: start must not be later than end", ErrInvalidInput)
	}
	times, err := tx.Times()
	if err != nil {
		return err
	}
	for _, other := range times {
		if other.ID == t.ID {
			continue
		}
		if t.OverlapsWith(other) {
			return fmt.Errorf("%w: time overlaps with existing scheduled time: %s to %s",
				ErrInvalidInput, other.Start.Format(time.RFC3339), other.End.Format(time.RFC3339))
		}
	}
	return nil
}

// privilegedOverTimes reports whether the actor can manage reservations
// registered by other users of their university.
func privilegedOverTimes(actor model.User) bool {
	return actor.Group == model.GroupAdmin || actor.Group == model.GroupManager
}
