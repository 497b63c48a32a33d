package tours

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type pgRepository struct {
	dbx *sqlx.DB
}

var _ Repository = (*pgRepository)(nil)

func NewPostgresRepository(db *sql.DB) *pgRepository {
	return &pgRepository{dbx: sqlx.NewDb(db, "postgres")}
}

type dbTour struct {
	ID                int64           `db:"id"`
	Name              string          `db:"name"`
	Description       string          `db:"description"`
	StartLocation     string          `db:"start_location"`
	EndLocation       string          `db:"end_location"`
	TransportType     string          `db:"transport_type"`
	Distance          float64         `db:"distance"`
	EstimatedTime     string          `db:"estimated_time"`
	MapImagePath      string          `db:"map_image_path"`
	Popularity        int             `db:"popularity"`
	ChildFriendliness sql.NullFloat64 `db:"child_friendliness"`
}

func (t dbTour) Map() Tour {
	tour := Tour{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		StartLocation: t.StartLocation,
		EndLocation:   t.EndLocation,
		TransportType: t.TransportType,
		Distance:      t.Distance,
		EstimatedTime: t.EstimatedTime,
		MapImagePath:  t.MapImagePath,
		Popularity:    t.Popularity,
	}

	if t.ChildFriendliness.Valid {
		cf := t.ChildFriendliness.Float64
		tour.ChildFriendliness = &cf
	}

	return tour
}

type dbTourLog struct {
	ID            int64     `db:"id"`
	TourID        int64     `db:"tour_id"`
	LogTime       time.Time `db:"log_time"`
	Comment       string    `db:"comment"`
	Difficulty    int       `db:"difficulty"`
	TotalDistance float64   `db:"total_distance"`
	TotalTime     string    `db:"total_time"`
	Rating        int       `db:"rating"`
}

func (l dbTourLog) Map() TourLog {
	return TourLog{
		ID:            l.ID,
		TourID:        l.TourID,
		LogTime:       LogTime{Time: l.LogTime},
		Comment:       l.Comment,
		Difficulty:    l.Difficulty,
		TotalDistance: l.TotalDistance,
		TotalTime:     l.TotalTime,
		Rating:        l.Rating,
	}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func (r *pgRepository) ListTours(ctx context.Context) ([]Tour, error) {
	var rows []dbTour
	err := r.dbx.SelectContext(ctx, &rows, `SELECT * FROM tours ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select tours: %w", err)
	}

	tours := make([]Tour, 0, len(rows))
	for _, row := range rows {
		tours = append(tours, row.Map())
	}

	return tours, nil
}

func (r *pgRepository) GetTour(ctx context.Context, id int64) (*Tour, error) {
	var row dbTour
	err := r.dbx.GetContext(ctx, &row, `SELECT * FROM tours WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get tour: %w", err)
	}

	t := row.Map()
	return &t, nil
}

func (r *pgRepository) CreateTour(ctx context.Context, t *Tour) error {
	err := r.dbx.GetContext(ctx, &t.ID, `
		INSERT INTO tours (name, description, start_location, end_location, transport_type,
			distance, estimated_time, map_image_path, popularity, child_friendliness)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		t.Name, t.Description, t.StartLocation, t.EndLocation, t.TransportType,
		t.Distance, t.EstimatedTime, t.MapImagePath, t.Popularity, nullFloat(t.ChildFriendliness))
	if err != nil {
		return fmt.Errorf("insert tour: %w", err)
	}

	return nil
}

func (r *pgRepository) UpdateTour(ctx context.Context, t *Tour) error {
	res, err := r.dbx.ExecContext(ctx, `
		UPDATE tours SET name = $2, description = $3, start_location = $4, end_location = $5,
			transport_type = $6, distance = $7, estimated_time = $8, map_image_path = $9
		WHERE id = $1`,
		t.ID, t.Name, t.Description, t.StartLocation, t.EndLocation,
		t.TransportType, t.Distance, t.EstimatedTime, t.MapImagePath)
	if err != nil {
		return fmt.Errorf("update tour: %w", err)
	}

	return expectOneRow(res)
}

func (r *pgRepository) DeleteTour(ctx context.Context, id int64) error {
	_, err := r.dbx.ExecContext(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tour: %w", err)
	}

	return nil
}

func (r *pgRepository) UpdateAggregates(ctx context.Context, tourID int64, popularity int, childFriendliness *float64) error {
	res, err := r.dbx.ExecContext(ctx,
		`UPDATE tours SET popularity = $2, child_friendliness = $3 WHERE id = $1`,
		tourID, popularity, nullFloat(childFriendliness))
	if err != nil {
		return fmt.Errorf("update tour aggregates: %w", err)
	}

	return expectOneRow(res)
}

func (r *pgRepository) ListLogs(ctx context.Context, tourID int64) ([]TourLog, error) {
	var rows []dbTourLog
	err := r.dbx.SelectContext(ctx, &rows, `SELECT * FROM tour_logs WHERE tour_id = $1 ORDER BY log_time, id`, tourID)
	if err != nil {
		return nil, fmt.Errorf("select tour logs: %w", err)
	}

	logs := make([]TourLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.Map())
	}

	return logs, nil
}

func (r *pgRepository) GetLog(ctx context.Context, id int64) (*TourLog, error) {
	var row dbTourLog
	err := r.dbx.GetContext(ctx, &row, `SELECT * FROM tour_logs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get tour log: %w", err)
	}

	l := row.Map()
	return &l, nil
}

func (r *pgRepository) CreateLog(ctx context.Context, l *TourLog) error {
	err := r.dbx.GetContext(ctx, &l.ID, `
		INSERT INTO tour_logs (tour_id, log_time, comment, difficulty, total_distance, total_time, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		l.TourID, l.LogTime.Time, l.Comment, l.Difficulty, l.TotalDistance, l.TotalTime, l.Rating)
	if err != nil {
		return fmt.Errorf("insert tour log: %w", err)
	}

	return nil
}

func (r *pgRepository) UpdateLog(ctx context.Context, l *TourLog) error {
	res, err := r.dbx.ExecContext(ctx, `
		UPDATE tour_logs SET log_time = $2, comment = $3, difficulty = $4,
			total_distance = $5, total_time = $6, rating = $7
		WHERE id = $1`,
		l.ID, l.LogTime.Time, l.Comment, l.Difficulty, l.TotalDistance, l.TotalTime, l.Rating)
	if err != nil {
		return fmt.Errorf("update tour log: %w", err)
	}

	return expectOneRow(res)
}

func (r *pgRepository) DeleteLog(ctx context.Context, id int64) error {
	_, err := r.dbx.ExecContext(ctx, `DELETE FROM tour_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tour log: %w", err)
	}

	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}
