package mapview

import (
	"math"
	"strconv"
	"strings"
)

const (
	OSMTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	OSMAttribution = "&copy; OpenStreetMap contributors"
	OSMSubdomains  = "abc"
	OSMMaxZoom     = 19
)

const maxMercatorLatitude = 85.0511287798

type TileLayer struct {
	URLTemplate string `json:"url"`
	Attribution string `json:"attribution"`
	Subdomains  string `json:"subdomains"`
	MaxZoom     int    `json:"max_zoom"`
}

// OSMTileLayer is the base layer every map starts with.
func OSMTileLayer() TileLayer {
	return TileLayer{
		URLTemplate: OSMTileURL,
		Attribution: OSMAttribution,
		Subdomains:  OSMSubdomains,
		MaxZoom:     OSMMaxZoom,
	}
}

// URL expands the template for tile (x, y) at zoom z. The subdomain rotates
// with the tile coordinates so neighbouring tiles spread across hosts.
func (l TileLayer) URL(x, y, z int) string {
	s := ""
	if n := len(l.Subdomains); n > 0 {
		i := (x + y) % n
		if i < 0 {
			i = -i
		}
		s = string(l.Subdomains[i])
	}

	return strings.NewReplacer(
		"{s}", s,
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(l.URLTemplate)
}

type Tile struct {
	X, Y, Z int
}

// TileAt returns the web mercator tile that contains p at zoom z.
func TileAt(p LatLng, z int) Tile {
	lat := math.Max(-maxMercatorLatitude, math.Min(maxMercatorLatitude, p.Lat))
	n := math.Exp2(float64(z))
	latRad := lat * math.Pi / 180

	x := int(math.Floor((p.Lng + 180) / 360 * n))
	y := int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	maxIdx := int(n) - 1
	return Tile{X: clamp(x, 0, maxIdx), Y: clamp(y, 0, maxIdx), Z: z}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
