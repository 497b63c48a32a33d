package mapview

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manzanit0/tourplanner/pkg/metrics"
)

var (
	ErrNotInitialized = errors.New("map is not initialized")
	ErrUnknownMap     = errors.New("unknown map")
)

type session struct {
	m        *Map
	lastSeen time.Time
}

// Registry owns the maps of every open widget, keyed by a random id.
type Registry struct {
	mu   sync.RWMutex
	maps map[string]*session
	now  func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{maps: make(map[string]*session), now: time.Now}
}

// Open creates a map and attaches it to container.
func (r *Registry) Open(container string) (string, *Map) {
	id := uuid.NewString()
	m := New()
	m.Attach(container)

	r.mu.Lock()
	r.maps[id] = &session{m: m, lastSeen: r.now()}
	metrics.ActiveMaps.Set(float64(len(r.maps)))
	r.mu.Unlock()

	return id, m
}

// Get returns the map for id and marks its session as used.
func (r *Registry) Get(id string) (*Map, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.maps[id]
	if !ok {
		return nil, ErrUnknownMap
	}

	s.lastSeen = r.now()
	return s.m, nil
}

func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.maps, id)
	metrics.ActiveMaps.Set(float64(len(r.maps)))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.maps)
}

// Sweep closes every session not used within maxIdle and returns how many
// were closed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var closed int
	for id, s := range r.maps {
		if s.lastSeen.Before(cutoff) {
			delete(r.maps, id)
			closed++
		}
	}

	metrics.ActiveMaps.Set(float64(len(r.maps)))
	return closed
}
