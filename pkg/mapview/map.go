package mapview

import (
	"fmt"
	"sync"
)

const (
	DefaultZoom = 13
	// SearchZoom is the zoom a map jumps to after a successful search.
	SearchZoom = 14
	MinZoom    = 0
)

// DefaultCenter is Vienna.
var DefaultCenter = LatLng{Lat: 48.2082, Lng: 16.3738}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p LatLng) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.Lat, p.Lng)
}

type ViewState struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

type Marker struct {
	Position LatLng `json:"position"`
	Label    string `json:"label,omitempty"`
}

// Snapshot is a copy of everything needed to draw a map.
type Snapshot struct {
	Container string      `json:"container"`
	Ready     bool        `json:"ready"`
	View      ViewState   `json:"view"`
	Layers    []TileLayer `json:"layers"`
	Markers   []Marker    `json:"markers"`
}

// Map is the server side of one map widget. It is not initialized until it
// is attached to a container; initialization happens exactly once.
type Map struct {
	once sync.Once

	mu        sync.Mutex
	container string
	ready     bool
	view      ViewState
	layers    []TileLayer
	markers   []Marker

	// issued is the last search ticket handed out; see BeginSearch.
	issued uint64
}

func New() *Map {
	return &Map{}
}

// Attach binds the map to container. The first call centers the map on
// DefaultCenter at DefaultZoom with the OSM base layer; later calls do
// nothing and report false.
func (m *Map) Attach(container string) bool {
	attached := false

	m.once.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.container = container
		m.view = ViewState{Center: DefaultCenter, Zoom: DefaultZoom}
		m.layers = []TileLayer{OSMTileLayer()}
		m.ready = true
		attached = true
	})

	return attached
}

func (m *Map) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ready
}

func (m *Map) View() ViewState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.view
}

func (m *Map) SetView(center LatLng, zoom int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.setView(center, zoom)
}

func (m *Map) AddMarker(marker Marker) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.addMarker(marker)
}

// BeginSearch hands out a ticket for a search about to hit the network.
// Only the result of the most recently issued ticket may be applied.
func (m *Map) BeginSearch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.issued++
	return m.issued
}

// ApplySearch recenters the map on marker at SearchZoom and drops the marker,
// unless a newer search was started after ticket was issued. It reports
// whether the result was applied.
func (m *Map) ApplySearch(ticket uint64, marker Marker) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ticket != m.issued {
		return false, nil
	}

	if err := m.setView(marker.Position, SearchZoom); err != nil {
		return false, err
	}

	if err := m.addMarker(marker); err != nil {
		return false, err
	}

	return true, nil
}

func (m *Map) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Container: m.container,
		Ready:     m.ready,
		View:      m.view,
		Layers:    append([]TileLayer{}, m.layers...),
		Markers:   append([]Marker{}, m.markers...),
	}
}

func (m *Map) setView(center LatLng, zoom int) error {
	if !m.ready {
		return ErrNotInitialized
	}

	if !center.Valid() {
		return fmt.Errorf("invalid center %s", center)
	}

	maxZoom := OSMMaxZoom
	if len(m.layers) > 0 {
		maxZoom = m.layers[0].MaxZoom
	}

	if zoom < MinZoom || zoom > maxZoom {
		return fmt.Errorf("zoom %d out of range [%d, %d]", zoom, MinZoom, maxZoom)
	}

	m.view = ViewState{Center: center, Zoom: zoom}
	return nil
}

func (m *Map) addMarker(marker Marker) error {
	if !m.ready {
		return ErrNotInitialized
	}

	if !marker.Position.Valid() {
		return fmt.Errorf("invalid marker position %s", marker.Position)
	}

	m.markers = append(m.markers, marker)
	return nil
}
