package tours

import (
	"context"
	"errors"
	"fmt"

	"github.com/manzanit0/tourplanner/pkg/apperr"
)

// LogService manages the logs of a tour and keeps the tour's aggregates in
// sync after every change.
type LogService struct {
	repo Repository
}

func NewLogService(repo Repository) *LogService {
	return &LogService{repo: repo}
}

func (s *LogService) List(ctx context.Context, tourID int64) ([]TourLog, error) {
	if err := s.tourExists(ctx, tourID); err != nil {
		return nil, err
	}

	return s.repo.ListLogs(ctx, tourID)
}

func (s *LogService) Get(ctx context.Context, tourID, logID int64) (*TourLog, error) {
	l, err := s.repo.GetLog(ctx, logID)
	if errors.Is(err, ErrNotFound) || (err == nil && l.TourID != tourID) {
		return nil, logNotFound(logID)
	}

	return l, err
}

func (s *LogService) Create(ctx context.Context, tourID int64, in LogInput) (*TourLog, error) {
	if err := s.tourExists(ctx, tourID); err != nil {
		return nil, err
	}

	if err := ValidateLog(in, true); err != nil {
		return nil, err
	}

	l := TourLog{TourID: tourID}
	if err := apply(&l, in); err != nil {
		return nil, err
	}

	if err := s.repo.CreateLog(ctx, &l); err != nil {
		return nil, fmt.Errorf("create tour log: %w", err)
	}

	if err := s.recompute(ctx, tourID); err != nil {
		return nil, err
	}

	return &l, nil
}

// Update applies only the fields present in in.
func (s *LogService) Update(ctx context.Context, tourID, logID int64, in LogInput) (*TourLog, error) {
	l, err := s.Get(ctx, tourID, logID)
	if err != nil {
		return nil, err
	}

	if err := ValidateLog(in, false); err != nil {
		return nil, err
	}

	if err := apply(l, in); err != nil {
		return nil, err
	}

	err = s.repo.UpdateLog(ctx, l)
	if errors.Is(err, ErrNotFound) {
		return nil, logNotFound(logID)
	} else if err != nil {
		return nil, fmt.Errorf("update tour log: %w", err)
	}

	if err := s.recompute(ctx, tourID); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *LogService) Delete(ctx context.Context, tourID, logID int64) error {
	if _, err := s.Get(ctx, tourID, logID); err != nil {
		return err
	}

	if err := s.repo.DeleteLog(ctx, logID); err != nil {
		return fmt.Errorf("delete tour log: %w", err)
	}

	return s.recompute(ctx, tourID)
}

func (s *LogService) recompute(ctx context.Context, tourID int64) error {
	logs, err := s.repo.ListLogs(ctx, tourID)
	if err != nil {
		return fmt.Errorf("list tour logs: %w", err)
	}

	popularity, child := Aggregates(logs)
	if err := s.repo.UpdateAggregates(ctx, tourID, popularity, child); err != nil {
		return fmt.Errorf("update aggregates: %w", err)
	}

	return nil
}

func (s *LogService) tourExists(ctx context.Context, tourID int64) error {
	_, err := s.repo.GetTour(ctx, tourID)
	if errors.Is(err, ErrNotFound) {
		return tourNotFound(tourID)
	}

	return err
}

// apply copies the non-nil fields of in onto l. in must be validated.
func apply(l *TourLog, in LogInput) error {
	if in.LogTime != nil {
		t, err := ParseLogTime(*in.LogTime)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid logTime", err)
		}
		l.LogTime = t
	}

	if in.Comment != nil {
		l.Comment = *in.Comment
	}

	if in.Difficulty != nil {
		l.Difficulty = *in.Difficulty
	}

	if in.TotalDistance != nil {
		l.TotalDistance = *in.TotalDistance
	}

	if in.TotalTime != nil {
		tt, err := NormalizeTotalTime(*in.TotalTime)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid totalTime", err)
		}
		l.TotalTime = tt
	}

	if in.Rating != nil {
		l.Rating = *in.Rating
	}

	return nil
}

func logNotFound(id int64) error {
	return apperr.NotFound("tour log %d not found", id)
}
