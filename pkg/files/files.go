// Package files exports and imports tours as JSON and renders markdown
// reports.
package files

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/tours"
)

const (
	ExportFilename  = "tours.json"
	SummaryFilename = "summary.md"
)

func TourReportFilename(id int64) string {
	return fmt.Sprintf("tour-%d.md", id)
}

type TourStore interface {
	List(ctx context.Context) ([]tours.Tour, error)
	Get(ctx context.Context, id int64) (*tours.Tour, error)
	Create(ctx context.Context, in tours.TourInput) (*tours.Tour, error)
}

type LogStore interface {
	List(ctx context.Context, tourID int64) ([]tours.TourLog, error)
	Create(ctx context.Context, tourID int64, in tours.LogInput) (*tours.TourLog, error)
}

// TourFile is one entry of an export. Computed fields are written for
// reference and ignored on import.
type TourFile struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	StartLocation     string    `json:"startLocation"`
	EndLocation       string    `json:"endLocation"`
	TransportType     string    `json:"transportType"`
	Distance          float64   `json:"distance"`
	EstimatedTime     string    `json:"estimatedTime"`
	MapImagePath      string    `json:"mapImagePath"`
	Popularity        int       `json:"popularity"`
	ChildFriendliness *float64  `json:"childFriendliness"`
	Logs              []LogFile `json:"logs"`
}

type LogFile struct {
	LogTime       string  `json:"logTime"`
	Comment       string  `json:"comment"`
	Difficulty    int     `json:"difficulty"`
	TotalDistance float64 `json:"totalDistance"`
	TotalTime     string  `json:"totalTime"`
	Rating        int     `json:"rating"`
}

type Service struct {
	tours TourStore
	logs  LogStore
}

func NewService(t TourStore, l LogStore) *Service {
	return &Service{tours: t, logs: l}
}

type tourWithLogs struct {
	tour tours.Tour
	logs []tours.TourLog
}

func (s *Service) loadAll(ctx context.Context) ([]tourWithLogs, error) {
	all, err := s.tours.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}

	out := make([]tourWithLogs, 0, len(all))
	for _, t := range all {
		logs, err := s.logs.List(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("list logs of tour %d: %w", t.ID, err)
		}

		out = append(out, tourWithLogs{tour: t, logs: logs})
	}

	return out, nil
}

// Export writes every tour with its logs to w as indented JSON.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	file := make([]TourFile, 0, len(all))
	for _, tl := range all {
		file = append(file, toFile(tl))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	return nil
}

func toFile(tl tourWithLogs) TourFile {
	t := tl.tour
	f := TourFile{
		ID:                t.ID,
		Name:              t.Name,
		Description:       t.Description,
		StartLocation:     t.StartLocation,
		EndLocation:       t.EndLocation,
		TransportType:     t.TransportType,
		Distance:          t.Distance,
		EstimatedTime:     t.EstimatedTime,
		MapImagePath:      t.MapImagePath,
		Popularity:        t.Popularity,
		ChildFriendliness: t.ChildFriendliness,
		Logs:              make([]LogFile, 0, len(tl.logs)),
	}

	for _, l := range tl.logs {
		f.Logs = append(f.Logs, LogFile{
			LogTime:       l.LogTime.String(),
			Comment:       l.Comment,
			Difficulty:    l.Difficulty,
			TotalDistance: l.TotalDistance,
			TotalTime:     l.TotalTime,
			Rating:        l.Rating,
		})
	}

	return f
}

type ImportOption func(*importOptions)

type importOptions struct {
	progress func(done, total int)
}

// WithProgress is called after each imported tour.
func WithProgress(fn func(done, total int)) ImportOption {
	return func(o *importOptions) {
		o.progress = fn
	}
}

type ImportResult struct {
	Tours int `json:"tours"`
	Logs  int `json:"logs"`
}

// Import reads an export and recreates every tour and log through the
// services, so routes are recomputed and logs validated. It stops at the
// first failure; entries imported before it are kept.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (ImportResult, error) {
	options := importOptions{progress: func(int, int) {}}
	for _, o := range opts {
		o(&options)
	}

	var file []TourFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return ImportResult{}, apperr.Wrap(apperr.KindValidation, "malformed import file", err)
	}

	var res ImportResult
	for i, src := range file {
		t, err := s.tours.Create(ctx, tours.TourInput{
			Name:          src.Name,
			Description:   src.Description,
			StartLocation: src.StartLocation,
			EndLocation:   src.EndLocation,
			TransportType: src.TransportType,
			MapImagePath:  src.MapImagePath,
		})
		if err != nil {
			return res, fmt.Errorf("import tour %q: %w", src.Name, err)
		}
		res.Tours++

		for _, lg := range src.Logs {
			_, err := s.logs.Create(ctx, t.ID, tours.LogInput{
				LogTime:       &lg.LogTime,
				Comment:       &lg.Comment,
				Difficulty:    &lg.Difficulty,
				TotalDistance: &lg.TotalDistance,
				TotalTime:     &lg.TotalTime,
				Rating:        &lg.Rating,
			})
			if err != nil {
				return res, fmt.Errorf("import log of tour %q: %w", src.Name, err)
			}
			res.Logs++
		}

		options.progress(i+1, len(file))
	}

	slog.InfoContext(ctx, "tours imported", "tours", res.Tours, "logs", res.Logs)
	return res, nil
}
