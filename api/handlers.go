/*
handlers.go - HTTP handlers for the DTR call surface

PURPOSE:
  Maps the front-end call surface (clock transitions, half-day, status,
  roster management, manual corrections) onto the engine. Handlers only
  parse requests, delegate, and serialize results; every rule lives in the
  dtr package.

ENDPOINTS:
  Clocking:
    POST /api/users/{id}/clock/{transition}   am_in|am_out|pm_in|pm_out
    POST /api/users/{id}/half-day             {"half": "morning"|"afternoon"}
    GET  /api/users/{id}/status

  Roster:
    GET    /api/users
    POST   /api/users                (admin)
    PUT    /api/users/{id}           (admin)
    DELETE /api/users/{id}           (admin)

  Admin:
    POST /api/admin/entries          manual correction
    GET  /api/admin/users/{id}/record

  Liveness:
    GET /health

IDENTITY:
  Authentication is out of scope; the chat front end vouches for identity
  and passes the acting admin in the X-Admin-ID header on privileged
  calls. The engine still checks the admin list.

ERROR HANDLING:
  Typed engine errors map to statuses; store faults return 502 with a
  generic "try again" so internal details never leak.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hawks/dtr-engine/dtr"
)

// adminHeader names the acting admin on privileged calls.
const adminHeader = "X-Admin-ID"

// Handler holds all dependencies for the HTTP surface.
type Handler struct {
	Engine   *dtr.Engine
	Roster   dtr.RosterStore
	Messages *Messages
}

// NewHandler wires the handler.
func NewHandler(engine *dtr.Engine, roster dtr.RosterStore, messages *Messages) *Handler {
	if messages == nil {
		messages = LoadMessages("")
	}
	return &Handler{Engine: engine, Roster: roster, Messages: messages}
}

// =============================================================================
// CLOCK HANDLERS
// =============================================================================

// Clock dispatches one of the four transitions for the user.
func (h *Handler) Clock(w http.ResponseWriter, r *http.Request) {
	user := dtr.UserID(chi.URLParam(r, "id"))
	transition := chi.URLParam(r, "transition")

	kind, err := dtr.ParseSlot(transition)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown transition. Use am_in, am_out, pm_in, or pm_out.")
		return
	}

	var res *dtr.Result
	switch kind {
	case dtr.AMIn:
		res, err = h.Engine.AmIn(r.Context(), user)
	case dtr.AMOut:
		res, err = h.Engine.AmOut(r.Context(), user)
	case dtr.PMIn:
		res, err = h.Engine.PmIn(r.Context(), user)
	case dtr.PMOut:
		res, err = h.Engine.PmOut(r.Context(), user)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.resultDTO(r, res))
}

// HalfDay marks half the user's day absent.
func (h *Handler) HalfDay(w http.ResponseWriter, r *http.Request) {
	user := dtr.UserID(chi.URLParam(r, "id"))

	var req HalfDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Engine.HalfDay(r.Context(), user, dtr.Half(req.Half))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.resultDTO(r, res))
}

// Status returns the user's reconstructed day with any computable totals.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	user := dtr.UserID(chi.URLParam(r, "id"))

	res, err := h.Engine.Status(r.Context(), user)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.resultDTO(r, res))
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListUsers returns the roster, with admin flags.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Roster.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list users. Please try again.")
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		admin, _ := h.Roster.IsAdmin(r.Context(), u.ID)
		dtos[i] = UserDTO{ID: string(u.ID), Name: u.DisplayName, Admin: admin}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser registers a roster entry (admin only).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Both id and name are required")
		return
	}

	if err := h.Roster.AddUser(r.Context(), dtr.UserProfile{ID: dtr.UserID(req.ID), DisplayName: req.Name}); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	p, _ := h.Roster.Lookup(r.Context(), dtr.UserID(req.ID))
	name := req.Name
	if p != nil {
		name = p.DisplayName
	}
	writeJSON(w, http.StatusCreated, UserDTO{ID: req.ID, Name: name})
}

// RenameUser changes a user's full name (admin only).
func (h *Handler) RenameUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := dtr.UserID(chi.URLParam(r, "id"))

	var req RenameUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "A new name is required")
		return
	}

	if err := h.Roster.Rename(r.Context(), id, req.Name); err != nil {
		writeEngineError(w, err)
		return
	}

	p, _ := h.Roster.Lookup(r.Context(), id)
	name := req.Name
	if p != nil {
		name = p.DisplayName
	}
	writeJSON(w, http.StatusOK, UserDTO{ID: string(id), Name: name})
}

// DeleteUser deregisters a user (admin only). History stays in the log.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := dtr.UserID(chi.URLParam(r, "id"))

	if err := h.Roster.Remove(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ManualEntry appends a correction event for any slot (admin only).
// Sequencing is advisory here; the warning rides along in the response.
func (h *Handler) ManualEntry(w http.ResponseWriter, r *http.Request) {
	admin := dtr.UserID(r.Header.Get(adminHeader))

	var req ManualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind, err := dtr.ParseSlot(req.Slot)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot. Use one of: am_in, am_out, pm_in, pm_out")
		return
	}

	res, err := h.Engine.ManualEntry(r.Context(), admin, dtr.UserID(req.UserID), kind, req.Time)
	if err != nil {
		if errors.Is(err, dtr.ErrParse) {
			writeError(w, http.StatusBadRequest, "Invalid time format. Use H:MM AM/PM, e.g. 8:30 AM")
			return
		}
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.resultDTO(r, res))
}

// ViewRecord returns any user's day (admin only).
func (h *Handler) ViewRecord(w http.ResponseWriter, r *http.Request) {
	admin := dtr.UserID(r.Header.Get(adminHeader))
	user := dtr.UserID(chi.URLParam(r, "id"))

	res, err := h.Engine.Record(r.Context(), admin, user)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.resultDTO(r, res))
}

// =============================================================================
// HELPERS
// =============================================================================

// resultDTO renders an engine result, resolving the display name and
// attaching a flavor line for classified clock-ins.
func (h *Handler) resultDTO(r *http.Request, res *dtr.Result) ResultDTO {
	name := ""
	if p, err := h.Roster.Lookup(r.Context(), res.Record.User); err == nil && p != nil {
		name = p.DisplayName
	}
	dto := ResultDTO{
		Record:         recordDTO(res.Record, name),
		Classification: string(res.Classification),
		Hours:          hoursDTO(res.Hours),
		Warning:        res.Warning,
	}
	if res.Classification != "" {
		dto.Message = h.Messages.Pick(res.Classification)
	}
	return dto
}

// requireAdmin checks the acting admin header against the roster.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	id := dtr.UserID(r.Header.Get(adminHeader))
	if id == "" {
		writeError(w, http.StatusForbidden, "This operation is only available to admins.")
		return false
	}
	ok, err := h.Roster.IsAdmin(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to check privileges. Please try again.")
		return false
	}
	if !ok {
		writeError(w, http.StatusForbidden, "This operation is only available to admins.")
		return false
	}
	return true
}

// writeEngineError maps typed engine errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dtr.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "You are not authorized to use the DTR system. Please contact an admin.")
	case errors.Is(err, dtr.ErrNotAdmin):
		writeError(w, http.StatusForbidden, "This operation is only available to admins.")
	case errors.Is(err, dtr.ErrPrecondition), errors.Is(err, dtr.ErrSequence):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, dtr.ErrParse):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dtr.ErrStore):
		// Internal store detail stays out of the response.
		writeError(w, http.StatusBadGateway, "Failed to reach the time record store. Please try again.")
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again or contact an admin.")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
