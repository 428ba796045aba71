package httpapi

import (
	"net/http"
	"strings"

	"roomtime.org/internal/audit"
	"roomtime.org/internal/model"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleToken is the OAuth2 password-grant login endpoint: form-encoded
// username and password in, bearer token out. All failure causes collapse
// into the same 401 response.
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed form body")
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	token, expiresAt, err := a.authn.Login(r.Context(), username, password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"username":   username,
		"expires_at": expiresAt,
	})
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

type hashRequest struct {
	Password string `json:"password"`
}

type hashResponse struct {
	HashedPassword string `json:"hashed_password"`
}

// handleHash hashes a plaintext password for bootstrap seeding of the
// first admin record. It never verifies anything and must not be used as
// a login path.
func (a *API) handleHash(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req hashRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	hashed, err := a.sched.HashPassword(req.Password)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hashResponse{HashedPassword: hashed})
}

// handleUsersMe returns the caller's own resolved identity.
func (a *API) handleUsersMe(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, actor.Public())
}
