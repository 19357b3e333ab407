package domain

import "time"

type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "available"
	ResourceStatusReserved    ResourceStatus = "reserved"
	ResourceStatusOccupied    ResourceStatus = "occupied"
	ResourceStatusMaintenance ResourceStatus = "maintenance"
)

func (s ResourceStatus) Valid() bool {
	switch s {
	case ResourceStatusAvailable, ResourceStatusReserved, ResourceStatusOccupied, ResourceStatusMaintenance:
		return true
	}
	return false
}

// Resource is the bookable unit (an apartment/property) with a daily rate in
// minor currency units. The coarse status is updated as a side effect of
// reservation activity and is advisory only; the reservation table and the
// day calendar are the availability sources of truth.
type Resource struct {
	ID        string
	Name      string
	DailyRate int64
	Status    ResourceStatus
	CreatedAt time.Time
}
