package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/app"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

// ReservationService is the minimal interface the reservation endpoints need.
type ReservationService interface {
	Create(ctx context.Context, in app.CreateReservationInput) (domain.Reservation, error)
	Get(ctx context.Context, id string) (domain.Reservation, error)
	Cancel(ctx context.Context, in app.CancelReservationInput) (domain.Reservation, error)
	Confirm(ctx context.Context, id string) (domain.Reservation, error)
	Fail(ctx context.Context, id string) (domain.Reservation, error)
}

// HandleCreateReservation returns the handler for POST /reservations.
func HandleCreateReservation(svc ReservationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createReservationRequest
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

		start, err := parseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid start_date")
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid end_date")
			return
		}

		res, err := svc.Create(r.Context(), app.CreateReservationInput{
			ResourceID:   req.ResourceID,
			HolderID:     req.HolderID,
			StartDate:    start,
			EndDate:      end,
			HoldTTL:      time.Duration(req.HoldTTLSeconds) * time.Second,
			HoldCalendar: req.HoldCalendar,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toReservationResponse(res))
	}
}

// HandleReservationActions routes GET /reservations/{id} and
// POST /reservations/{id}/{cancel|confirm|fail}.
func HandleReservationActions(svc ReservationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, ok := parseReservationPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			res, err := svc.Get(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeReservation(w, http.StatusOK, res)
		case action == "cancel" && r.Method == http.MethodPost:
			var req cancelReservationRequest
			if r.Body != nil && r.ContentLength != 0 {
				dec := json.NewDecoder(r.Body)
				dec.DisallowUnknownFields()
				if err := dec.Decode(&req); err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
					return
				}
			}
			res, err := svc.Cancel(r.Context(), app.CancelReservationInput{
				ReservationID: id,
				ActorID:       req.ActorID,
				Reason:        req.Reason,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeReservation(w, http.StatusOK, res)
		case action == "confirm" && r.Method == http.MethodPost:
			res, err := svc.Confirm(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeReservation(w, http.StatusOK, res)
		case action == "fail" && r.Method == http.MethodPost:
			res, err := svc.Fail(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeReservation(w, http.StatusOK, res)
		case action == "" || action == "cancel" || action == "confirm" || action == "fail":
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func parseReservationPath(path string) (id, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "reservations" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	return parts[1], parts[2], true
}

type createReservationRequest struct {
	ResourceID     string `json:"resource_id" validate:"required"`
	HolderID       string `json:"holder_id" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
	HoldTTLSeconds int    `json:"hold_ttl_seconds" validate:"omitempty,min=1"`
	HoldCalendar   bool   `json:"hold_calendar"`
}

type cancelReservationRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

type reservationResponse struct {
	ID           string     `json:"id"`
	ResourceID   string     `json:"resource_id"`
	HolderID     string     `json:"holder_id"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Nights       int        `json:"nights"`
	TotalPrice   int64      `json:"total_price"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy  string     `json:"cancelled_by,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toReservationResponse(res domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:           res.ID,
		ResourceID:   res.ResourceID,
		HolderID:     res.HolderID,
		StartDate:    res.StartDate.Format(dateLayout),
		EndDate:      res.EndDate.Format(dateLayout),
		Nights:       res.Nights(),
		TotalPrice:   res.TotalPrice,
		Status:       string(res.Status),
		ExpiresAt:    res.ExpiresAt,
		CancelledAt:  res.CancelledAt,
		CancelledBy:  res.CancelledBy,
		CancelReason: res.CancelReason,
		CreatedAt:    res.CreatedAt,
	}
}

func writeReservation(w http.ResponseWriter, status int, res domain.Reservation) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(toReservationResponse(res))
}
