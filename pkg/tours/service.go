package tours

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/routing"
)

type Service struct {
	repo   Repository
	router routing.Client
}

func NewService(repo Repository, router routing.Client) *Service {
	return &Service{repo: repo, router: router}
}

func (s *Service) List(ctx context.Context) ([]Tour, error) {
	return s.repo.ListTours(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Tour, error) {
	t, err := s.repo.GetTour(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, tourNotFound(id)
	}

	return t, err
}

// Create stores a new tour with distance and estimated time from the router.
func (s *Service) Create(ctx context.Context, in TourInput) (*Tour, error) {
	if err := ValidateTour(in); err != nil {
		return nil, err
	}

	t := fromInput(in)
	if err := s.route(ctx, &t); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTour(ctx, &t); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}

	slog.InfoContext(ctx, "tour created", "tour_id", t.ID, "profile", t.TransportType)
	return &t, nil
}

// Update replaces the user supplied fields of a tour and recomputes its
// route. Aggregates are left alone since they only depend on logs.
func (s *Service) Update(ctx context.Context, id int64, in TourInput) (*Tour, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateTour(in); err != nil {
		return nil, err
	}

	t := fromInput(in)
	t.ID = id
	t.Popularity = existing.Popularity
	t.ChildFriendliness = existing.ChildFriendliness

	if err := s.route(ctx, &t); err != nil {
		return nil, err
	}

	err = s.repo.UpdateTour(ctx, &t)
	if errors.Is(err, ErrNotFound) {
		return nil, tourNotFound(id)
	} else if err != nil {
		return nil, fmt.Errorf("update tour: %w", err)
	}

	return &t, nil
}

// Delete removes a tour and its logs. Deleting a missing tour is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTour(ctx, id); err != nil {
		return fmt.Errorf("delete tour: %w", err)
	}

	return nil
}

func (s *Service) route(ctx context.Context, t *Tour) error {
	r, err := s.router.RouteInfo(ctx, t.StartLocation, t.EndLocation, t.TransportType)
	if err != nil {
		return err
	}

	t.Distance = r.DistanceKm
	t.EstimatedTime = r.Duration
	return nil
}

func fromInput(in TourInput) Tour {
	return Tour{
		Name:          in.Name,
		Description:   in.Description,
		StartLocation: in.StartLocation,
		EndLocation:   in.EndLocation,
		TransportType: in.TransportType,
		MapImagePath:  in.MapImagePath,
	}
}

func tourNotFound(id int64) error {
	return apperr.NotFound("tour %d not found", id)
}
