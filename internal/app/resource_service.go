package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

type ResourceRepository interface {
	CreateResource(ctx context.Context, resource domain.Resource) error
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	SetResourceStatus(ctx context.Context, id string, status domain.ResourceStatus) error
}

// ResourceService manages the bookable units themselves. The reservation
// engine only reads the daily rate and flips the coarse status.
type ResourceService struct {
	repo  ResourceRepository
	clock clock.Clock
}

func NewResourceService(repo ResourceRepository, clk clock.Clock) *ResourceService {
	return &ResourceService{repo: repo, clock: clk}
}

type CreateResourceInput struct {
	Name      string
	DailyRate int64
}

func (s *ResourceService) Create(ctx context.Context, in CreateResourceInput) (domain.Resource, error) {
	if in.Name == "" {
		return domain.Resource{}, domain.ErrResourceNameRequired
	}
	if in.DailyRate <= 0 {
		return domain.Resource{}, domain.ErrInvalidDailyRate
	}

	resource := domain.Resource{
		ID:        uuid.NewString(),
		Name:      in.Name,
		DailyRate: in.DailyRate,
		Status:    domain.ResourceStatusAvailable,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.CreateResource(ctx, resource); err != nil {
		return domain.Resource{}, err
	}
	return resource, nil
}

func (s *ResourceService) Get(ctx context.Context, id string) (domain.Resource, error) {
	if id == "" {
		return domain.Resource{}, domain.ErrInvalidID
	}
	return s.repo.GetResource(ctx, id)
}

func (s *ResourceService) List(ctx context.Context) ([]domain.Resource, error) {
	return s.repo.ListResources(ctx)
}

func (s *ResourceService) SetStatus(ctx context.Context, id string, status domain.ResourceStatus) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	return s.repo.SetResourceStatus(ctx, id, status)
}
