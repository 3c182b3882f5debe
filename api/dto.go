/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the front-end call surface. DTOs are pure data
  carriers; validation happens in handlers, rendering of error reasons in
  writeError.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/hawks/dtr-engine/dtr"
)

// RecordDTO is the four-slot daily record. Empty slots are omitted; the
// "N/A" sentinel is carried through as-is.
type RecordDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Date   string `json:"date"`
	AMIn   string `json:"am_in,omitempty"`
	AMOut  string `json:"am_out,omitempty"`
	PMIn   string `json:"pm_in,omitempty"`
	PMOut  string `json:"pm_out,omitempty"`
}

// HoursDTO reports a computed total. For half days the requirement fields
// are omitted.
type HoursDTO struct {
	Worked         string `json:"worked"` // "8h 0m"
	HalfDay        bool   `json:"half_day,omitempty"`
	Required       string `json:"required,omitempty"` // "8h 0m"
	RequirementMet bool   `json:"requirement_met,omitempty"`
	Undertime      string `json:"undertime,omitempty"` // "0h 30m" when not met
}

// ResultDTO wraps a transition or status outcome.
type ResultDTO struct {
	Record RecordDTO `json:"record"`
	// Classification is only set on AM IN ("morning_person"|"late"|"normal").
	Classification string `json:"classification,omitempty"`
	// Message is the response flavor line for the classification.
	Message string `json:"message,omitempty"`
	Hours   *HoursDTO `json:"hours,omitempty"`
	// Warning carries an advisory sequencing message.
	Warning string `json:"warning,omitempty"`
}

// UserDTO is a roster entry.
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Admin bool   `json:"admin,omitempty"`
}

// CreateUserRequest registers a roster entry.
type CreateUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RenameUserRequest changes a user's full name.
type RenameUserRequest struct {
	Name string `json:"name"`
}

// HalfDayRequest marks half the day absent.
type HalfDayRequest struct {
	Half string `json:"half"` // "morning" or "afternoon"
}

// ManualEntryRequest is the privileged correction body.
type ManualEntryRequest struct {
	UserID string `json:"user_id"`
	Slot   string `json:"slot"` // am_in | am_out | pm_in | pm_out
	Time   string `json:"time"` // any accepted wall-clock format
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func recordDTO(rec dtr.DailyRecord, name string) RecordDTO {
	return RecordDTO{
		UserID: string(rec.User),
		Name:   name,
		Date:   dtr.PrettyDate(rec.Date),
		AMIn:   rec.AMIn,
		AMOut:  rec.AMOut,
		PMIn:   rec.PMIn,
		PMOut:  rec.PMOut,
	}
}

func hoursDTO(h *dtr.HoursSummary) *HoursDTO {
	if h == nil {
		return nil
	}
	out := &HoursDTO{
		Worked:  dtr.FormatDuration(h.Worked),
		HalfDay: h.HalfDay,
	}
	if !h.HalfDay {
		out.Required = dtr.FormatDuration(h.Required)
		out.RequirementMet = h.RequirementMet
		if !h.RequirementMet {
			out.Undertime = dtr.FormatDuration(h.Undertime)
		}
	}
	return out
}
