package httpapi

import (
	"net/http"
	"strings"

	"roomtime.org/internal/audit"
	"roomtime.org/internal/model"
	"roomtime.org/internal/scheduling"
)

type timeUpdateRequest struct {
	ID   string             `json:"id"`
	Data scheduling.NewTime `json:"data"`
}

func (a *API) handleTimesCreate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req scheduling.NewTime
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := a.sched.CreateTime(r.Context(), actor, req)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "times.create", map[string]any{"time_id": t.ID, "room_id": t.Room})
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleTimesList(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	roomID := strings.TrimSpace(r.URL.Query().Get("room_id"))
	if roomID == "" {
		writeError(w, r, http.StatusBadRequest, "room_id is required")
		return
	}
	times, err := a.sched.ListTimes(r.Context(), actor, roomID)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, times)
}

func (a *API) handleTimesUpdate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req timeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := a.sched.UpdateTime(r.Context(), actor, req.ID, req.Data)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "times.update", map[string]any{"time_id": t.ID})
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleTimesDelete(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sched.DeleteTime(r.Context(), actor, req.ID); err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "times.delete", map[string]any{"time_id": req.ID})
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
