package httpapi

import (
	"net/http"

	"roomtime.org/internal/audit"
	"roomtime.org/internal/model"
	"roomtime.org/internal/scheduling"
)

type userUpdateRequest struct {
	ID   string             `json:"id"`
	Data scheduling.NewUser `json:"data"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (a *API) handleUsersCreate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req scheduling.NewUser
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.sched.CreateUser(r.Context(), req)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.create", map[string]any{"user_id": user.ID})
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUsersList(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	users, err := a.sched.ListUsers(r.Context())
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) handleUsersUpdate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req userUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.sched.UpdateUser(r.Context(), req.ID, req.Data)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.update", map[string]any{"user_id": user.ID})
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUsersDelete(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sched.DisableUser(r.Context(), actor, req.ID); err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.disable", map[string]any{"user_id": req.ID})
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
