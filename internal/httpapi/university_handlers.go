package httpapi

import (
	"net/http"

	"roomtime.org/internal/audit"
	"roomtime.org/internal/model"
	"roomtime.org/internal/scheduling"
)

type universityUpdateRequest struct {
	ID   string                    `json:"id"`
	Data scheduling.UniversityData `json:"data"`
}

func (a *API) handleUniversitiesCreate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req scheduling.UniversityData
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	university, err := a.sched.CreateUniversity(r.Context(), req)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "universities.create", map[string]any{"university_id": university.ID})
	writeJSON(w, http.StatusOK, university)
}

func (a *API) handleUniversitiesList(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	universities, err := a.sched.ListUniversities(r.Context())
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	if universities == nil {
		universities = []model.University{}
	}
	writeJSON(w, http.StatusOK, universities)
}

func (a *API) handleUniversitiesUpdate(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req universityUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	university, err := a.sched.UpdateUniversity(r.Context(), req.ID, req.Data)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "universities.update", map[string]any{"university_id": university.ID})
	writeJSON(w, http.StatusOK, university)
}

func (a *API) handleUniversitiesDelete(w http.ResponseWriter, r *http.Request, actor model.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sched.DeleteUniversity(r.Context(), req.ID); err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "universities.delete", map[string]any{"university_id": req.ID})
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
