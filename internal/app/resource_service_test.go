package app

import (
	"context"
	"testing"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

func TestResourceService_Create(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("creates an available resource", func(t *testing.T) {
		repo := newFakeResourceRepo()
		svc := NewResourceService(repo, clock.NewFixed(now))

		resource, err := svc.Create(context.Background(), CreateResourceInput{Name: "Cabin A", DailyRate: 10000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resource.ID == "" {
			t.Fatalf("expected ID to be set")
		}
		if resource.Status != domain.ResourceStatusAvailable {
			t.Fatalf("expected available, got %s", resource.Status)
		}
		if !resource.CreatedAt.Equal(now) {
			t.Fatalf("expected created_at %v, got %v", now, resource.CreatedAt)
		}
		if len(repo.resources) != 1 {
			t.Fatalf("expected 1 resource stored, got %d", len(repo.resources))
		}
	})

	t.Run("name required", func(t *testing.T) {
		svc := NewResourceService(newFakeResourceRepo(), clock.NewFixed(now))
		if _, err := svc.Create(context.Background(), CreateResourceInput{DailyRate: 10000}); err != domain.ErrResourceNameRequired {
			t.Fatalf("expected ErrResourceNameRequired, got %v", err)
		}
	})

	t.Run("rate must be positive", func(t *testing.T) {
		svc := NewResourceService(newFakeResourceRepo(), clock.NewFixed(now))
		if _, err := svc.Create(context.Background(), CreateResourceInput{Name: "Cabin A", DailyRate: 0}); err != domain.ErrInvalidDailyRate {
			t.Fatalf("expected ErrInvalidDailyRate, got %v", err)
		}
	})
}

func TestResourceService_SetStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	repo := newFakeResourceRepo()
	repo.resources["res-1"] = domain.Resource{ID: "res-1", Name: "Cabin A", DailyRate: 10000, Status: domain.ResourceStatusAvailable}
	svc := NewResourceService(repo, clock.NewFixed(now))

	if err := svc.SetStatus(context.Background(), "res-1", domain.ResourceStatusMaintenance); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := repo.resources["res-1"].Status; got != domain.ResourceStatusMaintenance {
		t.Fatalf("expected maintenance, got %s", got)
	}

	if err := svc.SetStatus(context.Background(), "res-1", domain.ResourceStatus("broken")); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.SetStatus(context.Background(), "", domain.ResourceStatusAvailable); err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if err := svc.SetStatus(context.Background(), "missing", domain.ResourceStatusAvailable); err != domain.ErrResourceNotFound {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}

type fakeResourceRepo struct {
	resources map[string]domain.Resource
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{resources: make(map[string]domain.Resource)}
}

func (f *fakeResourceRepo) CreateResource(_ context.Context, resource domain.Resource) error {
	f.resources[resource.ID] = resource
	return nil
}

func (f *fakeResourceRepo) GetResource(_ context.Context, id string) (domain.Resource, error) {
	resource, ok := f.resources[id]
	if !ok {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	return resource, nil
}

func (f *fakeResourceRepo) ListResources(_ context.Context) ([]domain.Resource, error) {
	out := make([]domain.Resource, 0, len(f.resources))
	for _, r := range f.resources {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResourceRepo) SetResourceStatus(_ context.Context, id string, status domain.ResourceStatus) error {
	resource, ok := f.resources[id]
	if !ok {
		return domain.ErrResourceNotFound
	}
	resource.Status = status
	f.resources[id] = resource
	return nil
}
