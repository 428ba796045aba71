package httpapi

import (
	"net/http"

	"roomtime.org/internal/audit"
	"roomtime.org/internal/model"
	"roomtime.org/internal/scheduling"
)

type roomUpdateRequest struct {
	ID   string             `json:"id"`
	Data scheduling.NewRoom `json:"data"`
}

func (a *API) handleRoomsCreate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req scheduling.NewRoom
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	room, err := a.sched.CreateRoom(r.Context(), actor, req)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "rooms.create", map[string]any{"room_name": req.Name})
	writeJSON(w, http.StatusOK, room)
}

func (a *API) handleRoomsList(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	rooms, err := a.sched.ListRooms(r.Context(), actor)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (a *API) handleRoomsUpdate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req roomUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	room, err := a.sched.UpdateRoom(r.Context(), actor, req.ID, req.Data)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "rooms.update", map[string]any{"room_id": req.ID})
	writeJSON(w, http.StatusOK, room)
}

func (a *API) handleRoomsDelete(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sched.DeleteRoom(r.Context(), actor, req.ID); err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "rooms.delete", map[string]any{"room_id": req.ID})
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
