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

// ResourceService is the minimal interface the resource admin endpoints need.
type ResourceService interface {
	Create(ctx context.Context, in app.CreateResourceInput) (domain.Resource, error)
	Get(ctx context.Context, id string) (domain.Resource, error)
	List(ctx context.Context) ([]domain.Resource, error)
	SetStatus(ctx context.Context, id string, status domain.ResourceStatus) error
}

// HandleResources returns the handler for GET/POST /resources.
func HandleResources(svc ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			resources, err := svc.List(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]resourceResponse, 0, len(resources))
			for _, res := range resources {
				out = append(out, toResourceResponse(res))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var req createResourceRequest
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

			resource, err := svc.Create(r.Context(), app.CreateResourceInput{
				Name:      req.Name,
				DailyRate: req.DailyRate,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toResourceResponse(resource))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// ResourceSubHandlers groups the services needed under /resources/{id}/...
type ResourceSubHandlers struct {
	Resources    ResourceService
	Availability AvailabilityService
	Calendar     CalendarService
}

// Handler routes GET /resources/{id} plus the availability, occupancy,
// free-ranges, calendar, block, unblock and status sub-resources.
func (h ResourceSubHandlers) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resourceID, sub, ok := parseResourcePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch sub {
		case "":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			resource, err := h.Resources.Get(r.Context(), resourceID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toResourceResponse(resource))
		case "availability":
			handleAvailability(h.Availability, w, r, resourceID)
		case "occupancy":
			handleOccupancy(h.Availability, w, r, resourceID)
		case "free-ranges":
			handleFreeRanges(h.Availability, w, r, resourceID)
		case "calendar":
			handleCalendarView(h.Calendar, w, r, resourceID)
		case "block":
			handleBlockDates(h.Calendar, w, r, resourceID)
		case "unblock":
			handleUnblockDates(h.Calendar, w, r, resourceID)
		case "status":
			h.handleSetStatus(w, r, resourceID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func (h ResourceSubHandlers) handleSetStatus(w http.ResponseWriter, r *http.Request, resourceID string) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req setStatusRequest
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

	if err := h.Resources.SetStatus(r.Context(), resourceID, domain.ResourceStatus(req.Status)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseResourcePath(path string) (id, sub string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "resources" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	return parts[1], parts[2], true
}

type createResourceRequest struct {
	Name      string `json:"name" validate:"required"`
	DailyRate int64  `json:"daily_rate" validate:"required,min=1"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available reserved occupied maintenance"`
}

type resourceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DailyRate int64     `json:"daily_rate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toResourceResponse(res domain.Resource) resourceResponse {
	return resourceResponse{
		ID:        res.ID,
		Name:      res.Name,
		DailyRate: res.DailyRate,
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt,
	}
}
