package model

import "time"

// Group is the closed set of user roles. A user has exactly one group;
// admin bypasses university ownership scoping everywhere.
type Group string

const (
	GroupAdmin     Group = "admin"
	GroupManager   Group = "manager"
	GroupPersonnel Group = "personnel"
	GroupUser      Group = "user"
)

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool {
	switch g {
	case GroupAdmin, GroupManager, GroupPersonnel, GroupUser:
		return true
	}
	return false
}

// User is a stored account. HashedPassword is a bcrypt digest and is never
// serialized into API responses. Disabled accounts cannot log in or pass
// the access guard; deletion flips this flag instead of removing the record.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Group          Group  `json:"group"`
	University     string `json:"university,omitempty"`
	Disabled       bool   `json:"disabled,omitempty"`
	HashedPassword string `json:"hashed_password"`
}

// Public returns the user without the credential field, for API responses.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Group:      u.Group,
		University: u.University,
		Disabled:   u.Disabled,
	}
}

// PublicUser is the externally visible projection of a User.
type PublicUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Group      Group  `json:"group"`
	University string `json:"university,omitempty"`
	Disabled   bool   `json:"disabled,omitempty"`
}

// University is a tenant grouping rooms and non-admin users.
type University struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room belongs to exactly one university. Names are unique per university.
type Room struct {
	ID         string `json:"id"`
	University string `json:"university"`
	Name       string `json:"name"`
}

// UniversityRoom is the projection returned to non-admin callers; the
// university is implied by their own membership.
type UniversityRoom struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Time is a scheduled reservation of a room.
type Time struct {
	ID         string    `json:"id"`
	Room       string    `json:"room"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Registrant string    `json:"registrant"`
}

// OverlapsWith reports whether two reservations of the same room intersect.
// Intervals are half-open: touching end-to-start is not an overlap.
func (t Time) OverlapsWith(other Time) bool {
	if t.Room != other.Room {
		return false
	}
	if !t.Start.Before(other.End) {
		return false
	}
	if !t.End.After(other.Start) {
		return false
	}
	return true
}
