package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"roomtime.org/internal/auth"
	"roomtime.org/internal/model"
	"roomtime.org/internal/scheduling"
	"roomtime.org/internal/store/jsonfile"
)

type testEnv struct {
	api   *API
	db    *jsonfile.DB
	codec *auth.TokenCodec
	now   *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := jsonfile.Open(filepath.Join(t.TempDir(), "database.json"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	now := time.Now()
	codec, err := auth.NewTokenCodec("test-secret",
		auth.WithIssuer("roomtime-test"),
		auth.WithClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	sched, err := scheduling.NewService(db, log)
	if err != nil {
		t.Fatalf("scheduling: %v", err)
	}
	api := New(db, auth.NewAuthenticator(db, codec, log), auth.NewGuard(db, codec), sched, log, "test")
	return &testEnv{api: api, db: db, codec: codec, now: &now}
}

// do serves a request through the route table, without the outer
// transport middleware.
func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.api.mux.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doJSON(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	return e.do(t, method, path, token, strings.NewReader(body), "application/json")
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func (e *testEnv) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	return e.do(t, http.MethodPost, "/token", "", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func TestBootstrapFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// hash a password for the seed record
	rr := e.doJSON(t, http.MethodPost, "/hash", "", `{"password":"my-password"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("/hash: %d %s", rr.Code, rr.Body.String())
	}
	hashed := decodeBody[map[string]string](t, rr)["hashed_password"]
	if !strings.HasPrefix(hashed, "$2a$12$") {
		t.Fatalf("expected bcrypt cost-12 hash, got %q", hashed)
	}

	// seed the first admin directly, as the bootstrap instructions do
	admin := model.User{ID: "u-admin", Username: "admin", Group: model.GroupAdmin, HashedPassword: hashed}
	if err := e.db.Put(ctx, jsonfile.CollectionUsers, admin.ID, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	// password grant
	rr = e.login(t, "admin", "my-password")
	if rr.Code != http.StatusOK {
		t.Fatalf("/token: %d %s", rr.Code, rr.Body.String())
	}
	tok := decodeBody[tokenResponse](t, rr)
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Fatalf("unexpected token response %+v", tok)
	}

	// the token opens an admin-only route
	rr = e.do(t, http.MethodGet, "/users/list", tok.AccessToken, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/users/list with token: %d %s", rr.Code, rr.Body.String())
	}

	// without credentials the same route is unauthorized
	rr = e.do(t, http.MethodGet, "/users/list", "", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("/users/list without token: %d", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected WWW-Authenticate challenge")
	}

	// /users/me reflects the resolved identity
	rr = e.do(t, http.MethodGet, "/users/me", tok.AccessToken, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/users/me: %d %s", rr.Code, rr.Body.String())
	}
	me := decodeBody[model.PublicUser](t, rr)
	if me.ID != "u-admin" || me.Group != model.GroupAdmin {
		t.Fatalf("unexpected identity %+v", me)
	}
}

func TestExpiredTokenIsUnauthorized(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	admin := model.User{ID: "u-admin", Username: "admin", Group: model.GroupAdmin, HashedPassword: "$2a$12$seeded"}
	if err := e.db.Put(ctx, jsonfile.CollectionUsers, admin.ID, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, _, err := e.codec.Issue(admin.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	*e.now = e.now.Add(e.codec.TTL() + time.Minute)
	rr := e.do(t, http.MethodGet, "/users/list", token, nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rr.Code)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	hashed, err := auth.HashPassword("right-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := model.User{ID: "u-admin", Username: "admin", Group: model.GroupAdmin, HashedPassword: hashed}
	if err := e.db.Put(ctx, jsonfile.CollectionUsers, admin.ID, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	wrongPassword := e.login(t, "admin", "wrong")
	unknownUser := e.login(t, "nonexistent", "anything")

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownUser.Code)
	}
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("login failure bodies differ: %q vs %q", wrongPassword.Body.String(), unknownUser.Body.String())
	}
}

func TestGroupGating(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	uni := model.University{ID: "uni-1", Name: "Example University"}
	if err := e.db.Put(ctx, jsonfile.CollectionUniversities, uni.ID, uni); err != nil {
		t.Fatalf("seed university: %v", err)
	}
	staff := model.User{ID: "u-staff", Username: "staff", Group: model.GroupPersonnel, University: "uni-1", HashedPassword: "$2a$12$seeded"}
	if err := e.db.Put(ctx, jsonfile.CollectionUsers, staff.ID, staff); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	token, _, err := e.codec.Issue(staff.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// forbidden on an admin-only route
	rr := e.do(t, http.MethodGet, "/users/list", token, nil, "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on admin route, got %d %s", rr.Code, rr.Body.String())
	}

	// the same token is fine on a self-scoped route
	rr = e.do(t, http.MethodGet, "/rooms/list", token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on scoped route, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestDisabledUserIsLockedOut(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	hashed, err := auth.HashPassword("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := model.User{ID: "u-admin", Username: "admin", Group: model.GroupAdmin, HashedPassword: hashed}
	if err := e.db.Put(ctx, jsonfile.CollectionUsers, admin.ID, admin); err != nil {
		t.Fatalf("seed: %v", err)
	}
	token, _, err := e.codec.Issue(admin.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	admin.Disabled = true
	if err := e.db.Put(ctx, jsonfile.CollectionUsers, admin.ID, admin); err != nil {
		t.Fatalf("disable: %v", err)
	}

	// outstanding token no longer passes the guard
	rr := e.do(t, http.MethodGet, "/users/me", token, nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled user, got %d", rr.Code)
	}
	// and login is refused with the generic credentials error
	rr = e.login(t, "admin", "pw")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 login for disabled user, got %d", rr.Code)
	}
}

func TestCRUDFlowThroughAPI(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	admin := model.User{ID: "u-admin", Username: "admin", Group: model.GroupAdmin, HashedPassword: "$2a$12$seeded"}
	if err := e.db.Put(ctx, jsonfile.CollectionUsers, admin.ID, admin); err != nil {
		t.Fatalf("seed: %v", err)
	}
	token, _, err := e.codec.Issue(admin.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rr := e.doJSON(t, http.MethodPost, "/universities/create", token, `{"name":"Example University"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create university: %d %s", rr.Code, rr.Body.String())
	}
	uni := decodeBody[model.University](t, rr)

	rr = e.doJSON(t, http.MethodPost, "/rooms/create", token, `{"university":"`+uni.ID+`","name":"101"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create room: %d %s", rr.Code, rr.Body.String())
	}
	room := decodeBody[model.Room](t, rr)

	rr = e.doJSON(t, http.MethodPost, "/times/create", token,
		`{"room":"`+room.ID+`","start":"2026-09-01T09:00:00Z","end":"2026-09-01T10:00:00Z"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create time: %d %s", rr.Code, rr.Body.String())
	}
	created := decodeBody[model.Time](t, rr)
	if created.Registrant != admin.ID {
		t.Fatalf("expected registrant to default to the caller, got %q", created.Registrant)
	}

	rr = e.do(t, http.MethodGet, "/times/list?room_id="+room.ID, token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list times: %d %s", rr.Code, rr.Body.String())
	}
	listed := decodeBody[[]scheduling.TimeListing](t, rr)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected listing %+v", listed)
	}

	// overlapping time is rejected with 400
	rr = e.doJSON(t, http.MethodPost, "/times/create", token,
		`{"room":"`+room.ID+`","start":"2026-09-01T09:30:00Z","end":"2026-09-01T10:30:00Z"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for overlap, got %d %s", rr.Code, rr.Body.String())
	}

	rr = e.doJSON(t, http.MethodPost, "/universities/delete", token, `{"id":"`+uni.ID+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete university: %d %s", rr.Code, rr.Body.String())
	}
	if _, ok, _ := e.db.RoomByID(ctx, room.ID); ok {
		t.Fatalf("expected cascade to remove the room")
	}
}

func TestMethodGating(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, "/token", "", nil, "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /token: expected 405, got %d", rr.Code)
	}
	if rr.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", rr.Header().Get("Allow"))
	}
}
