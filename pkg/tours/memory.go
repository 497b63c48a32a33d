package tours

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps tours in process. It backs `serve` when no database
// is configured and the package tests.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	tours  map[int64]Tour
	logs   map[int64]TourLog
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tours: map[int64]Tour{}, logs: map[int64]TourLog{}}
}

func (r *MemoryRepository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *MemoryRepository) ListTours(_ context.Context) ([]Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tours := make([]Tour, 0, len(r.tours))
	for _, t := range r.tours {
		tours = append(tours, t)
	}

	sort.Slice(tours, func(i, j int) bool { return tours[i].ID < tours[j].ID })
	return tours, nil
}

func (r *MemoryRepository) GetTour(_ context.Context, id int64) (*Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tours[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &t, nil
}

func (r *MemoryRepository) CreateTour(_ context.Context, t *Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.id()
	r.tours[t.ID] = *t
	return nil
}

func (r *MemoryRepository) UpdateTour(_ context.Context, t *Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.tours[t.ID]
	if !ok {
		return ErrNotFound
	}

	updated := *t
	updated.Popularity = old.Popularity
	updated.ChildFriendliness = old.ChildFriendliness
	r.tours[t.ID] = updated
	return nil
}

func (r *MemoryRepository) DeleteTour(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tours, id)
	for logID, l := range r.logs {
		if l.TourID == id {
			delete(r.logs, logID)
		}
	}

	return nil
}

func (r *MemoryRepository) UpdateAggregates(_ context.Context, tourID int64, popularity int, childFriendliness *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tours[tourID]
	if !ok {
		return ErrNotFound
	}

	t.Popularity = popularity
	t.ChildFriendliness = childFriendliness
	r.tours[tourID] = t
	return nil
}

func (r *MemoryRepository) ListLogs(_ context.Context, tourID int64) ([]TourLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logs := []TourLog{}
	for _, l := range r.logs {
		if l.TourID == tourID {
			logs = append(logs, l)
		}
	}

	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].LogTime.Equal(logs[j].LogTime.Time) {
			return logs[i].LogTime.Before(logs[j].LogTime.Time)
		}
		return logs[i].ID < logs[j].ID
	})

	return logs, nil
}

func (r *MemoryRepository) GetLog(_ context.Context, id int64) (*TourLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.logs[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &l, nil
}

func (r *MemoryRepository) CreateLog(_ context.Context, l *TourLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tours[l.TourID]; !ok {
		return ErrNotFound
	}

	l.ID = r.id()
	r.logs[l.ID] = *l
	return nil
}

func (r *MemoryRepository) UpdateLog(_ context.Context, l *TourLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.logs[l.ID]; !ok {
		return ErrNotFound
	}

	r.logs[l.ID] = *l
	return nil
}

func (r *MemoryRepository) DeleteLog(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.logs, id)
	return nil
}
