package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

// CalendarService is the minimal interface the operator calendar endpoints
// need.
type CalendarService interface {
	View(ctx context.Context, resourceID string, start, end time.Time) ([]domain.CalendarDay, error)
	BlockDates(ctx context.Context, resourceID string, start, end time.Time, notes string) (int, error)
	UnblockDates(ctx context.Context, resourceID string, start, end time.Time) (int, error)
}

func handleCalendarView(svc CalendarService, w http.ResponseWriter, r *http.Request, resourceID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	from, to, ok := parseDateParams(w, r, "from", "to")
	if !ok {
		return
	}

	days, err := svc.View(r.Context(), resourceID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]calendarDayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, calendarDayResponse{
			Date:          d.Date.Format(dateLayout),
			Status:        string(d.Status),
			ReservationID: d.ReservationID,
			Notes:         d.Notes,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func handleBlockDates(svc CalendarService, w http.ResponseWriter, r *http.Request, resourceID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req blockDatesRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	start, _ := parseDate(req.StartDate)
	end, _ := parseDate(req.EndDate)

	blocked, err := svc.BlockDates(r.Context(), resourceID, start, end, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(blockDatesResponse{Days: blocked})
}

func handleUnblockDates(svc CalendarService, w http.ResponseWriter, r *http.Request, resourceID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req blockDatesRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	start, _ := parseDate(req.StartDate)
	end, _ := parseDate(req.EndDate)

	released, err := svc.UnblockDates(r.Context(), resourceID, start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(blockDatesResponse{Days: released})
}

type blockDatesRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Notes     string `json:"notes"`
}

type blockDatesResponse struct {
	Days int `json:"days"`
}

type calendarDayResponse struct {
	Date          string `json:"date"`
	Status        string `json:"status"`
	ReservationID string `json:"reservation_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}
