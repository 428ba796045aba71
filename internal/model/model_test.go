package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestGroupValid(t *testing.T) {
	for _, g := range []Group{GroupAdmin, GroupManager, GroupPersonnel, GroupUser} {
		if !g.Valid() {
			t.Fatalf("expected %q to be valid", g)
		}
	}
	for _, g := range []Group{"", "root", "Admin"} {
		if g.Valid() {
			t.Fatalf("expected %q to be invalid", g)
		}
	}
}

func TestPublicOmitsCredential(t *testing.T) {
	u := User{
		ID: "u-1", Username: "alice", Group: GroupManager,
		University: "uni-1", HashedPassword: "$2a$12$secret",
	}
	raw, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "hashed_password") || strings.Contains(string(raw), "secret") {
		t.Fatalf("credential leaked into public projection: %s", raw)
	}
}

func TestOverlapsWith(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }
	slot := func(room string, startH, endH int) Time {
		return Time{Room: room, Start: at(startH), End: at(endH)}
	}

	tests := []struct {
		name string
		a, b Time
		want bool
	}{
		{"identical", slot("r-1", 0, 2), slot("r-1", 0, 2), true},
		{"partial overlap", slot("r-1", 0, 2), slot("r-1", 1, 3), true},
		{"contained", slot("r-1", 0, 4), slot("r-1", 1, 2), true},
		{"touching end to start", slot("r-1", 0, 2), slot("r-1", 2, 4), false},
		{"touching start to end", slot("r-1", 2, 4), slot("r-1", 0, 2), false},
		{"disjoint", slot("r-1", 0, 1), slot("r-1", 3, 4), false},
		{"different rooms", slot("r-1", 0, 2), slot("r-2", 0, 2), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.OverlapsWith(tc.b); got != tc.want {
				t.Fatalf("OverlapsWith = %v, want %v", got, tc.want)
			}
			if got := tc.b.OverlapsWith(tc.a); got != tc.want {
				t.Fatalf("OverlapsWith is not symmetric: %v, want %v", got, tc.want)
			}
		})
	}
}
