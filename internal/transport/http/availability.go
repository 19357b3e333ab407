package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

// AvailabilityService is the minimal interface the read-side endpoints need.
type AvailabilityService interface {
	IsAvailable(ctx context.Context, resourceID string, start, end time.Time) (bool, error)
	OccupancyRate(ctx context.Context, resourceID string, start, end time.Time) (float64, error)
	FindFreeRanges(ctx context.Context, resourceID string, minNights, maxNights int, window domain.DateRange) ([]domain.DateRange, error)
}

func handleAvailability(svc AvailabilityService, w http.ResponseWriter, r *http.Request, resourceID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	start, end, ok := parseDateParams(w, r, "start", "end")
	if !ok {
		return
	}

	available, err := svc.IsAvailable(r.Context(), resourceID, start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(availabilityResponse{
		ResourceID: resourceID,
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		Available:  available,
	})
}

func handleOccupancy(svc AvailabilityService, w http.ResponseWriter, r *http.Request, resourceID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	start, end, ok := parseDateParams(w, r, "start", "end")
	if !ok {
		return
	}

	rate, err := svc.OccupancyRate(r.Context(), resourceID, start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(occupancyResponse{
		ResourceID:    resourceID,
		StartDate:     start.Format(dateLayout),
		EndDate:       end.Format(dateLayout),
		OccupancyRate: rate,
	})
}

func handleFreeRanges(svc AvailabilityService, w http.ResponseWriter, r *http.Request, resourceID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	from, to, ok := parseDateParams(w, r, "from", "to")
	if !ok {
		return
	}
	minNights := intParam(r, "min_nights", 1)
	maxNights := intParam(r, "max_nights", minNights)

	ranges, err := svc.FindFreeRanges(r.Context(), resourceID, minNights, maxNights, domain.DateRange{Start: from, End: to})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]dateRangeResponse, 0, len(ranges))
	for _, rng := range ranges {
		out = append(out, dateRangeResponse{
			StartDate: rng.Start.Format(dateLayout),
			EndDate:   rng.End.Format(dateLayout),
			Nights:    rng.Nights(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func intParam(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

type availabilityResponse struct {
	ResourceID string `json:"resource_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Available  bool   `json:"available"`
}

type occupancyResponse struct {
	ResourceID    string  `json:"resource_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type dateRangeResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Nights    int    `json:"nights"`
}
