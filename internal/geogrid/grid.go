// Package geogrid привязывает координаты к ячейкам сетки фиксированного размера.
package geogrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"

	"github.com/shenikar/tourist_safety/internal/apperr"
)

const (
	// EarthRadiusMeters - средний радиус Земли
	EarthRadiusMeters = 6371008.8

	// DefaultResolution - около 500 м по широте
	DefaultResolution = 0.0045

	idPrecision   = 5
	minResolution = 1e-4
	maxResolution = 10.0
)

// Point - координата WGS84 в градусах
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Cell - ячейка сетки
type Cell struct {
	ID     string `json:"cell_id"`
	Center Point  `json:"center"`
}

// Grid отображает точки в ячейки с фиксированным шагом в градусах
type Grid struct {
	resolution float64
}

// NewGrid проверяет шаг сетки. Идентификатор печатается с пятью знаками,
// поэтому шаг меньше 1e-4 градуса запрещен: центры соседних ячеек совпадут.
func NewGrid(resolution float64) (Grid, error) {
	if math.IsNaN(resolution) || resolution < minResolution || resolution > maxResolution {
		return Grid{}, apperr.Config("geogrid", "resolution %v must be within [%v, %v] degrees", resolution, minResolution, maxResolution)
	}
	return Grid{resolution: resolution}, nil
}

// Resolution возвращает размер ячейки в градусах
func (g Grid) Resolution() float64 {
	return g.resolution
}

// CellOf возвращает ячейку, содержащую точку
func (g Grid) CellOf(lat, lng float64) Cell {
	center := Point{
		Lat: g.snap(lat),
		Lng: g.snap(lng),
	}
	return Cell{ID: FormatID(center), Center: center}
}

func (g Grid) snap(v float64) float64 {
	return math.Floor(v/g.resolution)*g.resolution + g.resolution/2
}

// Owns проверяет, что id принадлежит этой сетке. Id другой сетки
// привязывается к другому центру и отклоняется.
func (g Grid) Owns(id string) bool {
	center, err := ParseCellID(id)
	if err != nil {
		return false
	}
	return g.CellOf(center.Lat, center.Lng).ID == id
}

// FormatID формирует идентификатор "{lat}_{lng}"
func FormatID(center Point) string {
	return strconv.FormatFloat(center.Lat, 'f', idPrecision, 64) + "_" + strconv.FormatFloat(center.Lng, 'f', idPrecision, 64)
}

// ParseCellID восстанавливает центр ячейки из идентификатора
func ParseCellID(id string) (Point, error) {
	latStr, lngStr, ok := strings.Cut(id, "_")
	if !ok {
		return Point{}, apperr.Validation("geogrid", "malformed cell id %q", id)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Point{}, apperr.Validation("geogrid", "malformed cell latitude in %q", id)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return Point{}, apperr.Validation("geogrid", "malformed cell longitude in %q", id)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Point{}, apperr.Validation("geogrid", "cell id %q out of range", id)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// Distance возвращает расстояние по большому кругу в метрах
func Distance(a, b Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lng)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return la.Distance(lb).Radians() * EarthRadiusMeters
}

func ValidPoint(p Point) bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.Lat, p.Lng)
}
