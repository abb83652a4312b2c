/*
Copyright © 2026 the agentzones authors.
This file is part of agentzones.

agentzones is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

agentzones is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with agentzones.  If not, see <http://www.gnu.org/licenses/>.
*/

package agentzones

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Default grid parameters.
const (
	MinLatitude   = -90.
	MaxLatitude   = 90.
	MinLongitude  = -180.
	MaxLongitude  = 180.
	DegreeWidth   = 1.
	DegreeHeight  = 1.
	EarthRadiusKm = 6371.
)

// MaxZones is the largest number of zones a grid may have. A 0.05° grid
// of the whole globe is within the limit.
const MaxZones = 1 << 25

// spanTolerance is the allowed deviation from a whole number of cells
// when checking that the grid extent is a multiple of the cell size.
const spanTolerance = 1.e-9

var (
	// ErrOutOfBounds is returned when a position falls outside of the grid.
	ErrOutOfBounds = errors.New("agentzones: position is outside of the grid")

	// ErrNotBuilt is returned when a grid is used before Build is called.
	ErrNotBuilt = errors.New("agentzones: grid has not been built")
)

// OutOfBoundsError gives the position that could not be resolved and the
// zone index that was computed for it. It matches ErrOutOfBounds when
// used with errors.Is.
type OutOfBoundsError struct {
	Position Position
	Index    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("agentzones: position %v (index %d) is outside of the grid", e.Position, e.Index)
}

// Is allows errors.Is(err, ErrOutOfBounds).
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// GridConfig holds the extent and resolution of a uniform grid, in degrees.
type GridConfig struct {
	MinLatitude  float64 // southern edge of the grid
	MaxLatitude  float64 // northern edge of the grid (exclusive)
	MinLongitude float64 // western edge of the grid
	MaxLongitude float64 // eastern edge of the grid (exclusive)
	DegreeWidth  float64 // zone width in degrees longitude
	DegreeHeight float64 // zone height in degrees latitude

	EarthRadiusKm float64 // used for zone width and height
}

// DefaultGridConfig returns a configuration for a global grid of
// 1°×1° zones.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		MinLatitude:   MinLatitude,
		MaxLatitude:   MaxLatitude,
		MinLongitude:  MinLongitude,
		MaxLongitude:  MaxLongitude,
		DegreeWidth:   DegreeWidth,
		DegreeHeight:  DegreeHeight,
		EarthRadiusKm: EarthRadiusKm,
	}
}

// dims returns the number of rows and columns in the grid.
func (c GridConfig) dims() (rows, cols int, err error) {
	if !(c.DegreeWidth > 0) || !(c.DegreeHeight > 0) {
		return 0, 0, fmt.Errorf("agentzones: zone size must be >0 but is %g×%g degrees", c.DegreeWidth, c.DegreeHeight)
	}
	if !(c.EarthRadiusKm > 0) {
		return 0, 0, fmt.Errorf("agentzones: EarthRadiusKm=%g but should be >0", c.EarthRadiusKm)
	}
	if !(c.MinLatitude < c.MaxLatitude) || c.MinLatitude < -90 || c.MaxLatitude > 90 {
		return 0, 0, fmt.Errorf("agentzones: invalid latitude range [%g, %g)", c.MinLatitude, c.MaxLatitude)
	}
	if !(c.MinLongitude < c.MaxLongitude) || c.MinLongitude < -180 || c.MaxLongitude > 180 {
		return 0, 0, fmt.Errorf("agentzones: invalid longitude range [%g, %g)", c.MinLongitude, c.MaxLongitude)
	}
	r := (c.MaxLatitude - c.MinLatitude) / c.DegreeHeight
	if math.Abs(r-math.Round(r)) > spanTolerance {
		return 0, 0, fmt.Errorf("agentzones: latitude range %g is not a multiple of DegreeHeight=%g",
			c.MaxLatitude-c.MinLatitude, c.DegreeHeight)
	}
	cl := (c.MaxLongitude - c.MinLongitude) / c.DegreeWidth
	if math.Abs(cl-math.Round(cl)) > spanTolerance {
		return 0, 0, fmt.Errorf("agentzones: longitude range %g is not a multiple of DegreeWidth=%g",
			c.MaxLongitude-c.MinLongitude, c.DegreeWidth)
	}
	if n := math.Round(r) * math.Round(cl); n > MaxZones {
		return 0, 0, fmt.Errorf("agentzones: a %g×%g degree grid would have %.0f zones but at most %d are allowed; "+
			"increase DegreeWidth or DegreeHeight or shrink the grid extent", c.DegreeWidth, c.DegreeHeight, n, MaxZones)
	}
	return int(math.Round(r)), int(math.Round(cl)), nil
}

// ZoneGrid is a registry of the zones in a uniform grid. It resolves
// positions to zones arithmetically, without searching.
//
// A ZoneGrid must be built with Build before it is used.
type ZoneGrid struct {
	cfg        GridConfig
	rows, cols int

	built uint32 // set atomically once zones is filled
	mu    sync.Mutex
	zones []*Zone
}

// NewZoneGrid checks cfg and returns an unbuilt grid.
func NewZoneGrid(cfg GridConfig) (*ZoneGrid, error) {
	rows, cols, err := cfg.dims()
	if err != nil {
		return nil, err
	}
	return &ZoneGrid{cfg: cfg, rows: rows, cols: cols}, nil
}

// Build creates the zones of g. Zones are stored row by row from south to
// north, with each row running from west to east. Calling Build more than
// once, including concurrently, has no further effect.
func (g *ZoneGrid) Build() {
	if atomic.LoadUint32(&g.built) == 1 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.built == 1 {
		return
	}
	zones := make([]*Zone, 0, g.rows*g.cols)
	for r := 0; r < g.rows; r++ {
		lat := g.cfg.MinLatitude + float64(r)*g.cfg.DegreeHeight
		latNext := g.cfg.MinLatitude + float64(r+1)*g.cfg.DegreeHeight
		for c := 0; c < g.cols; c++ {
			lon := g.cfg.MinLongitude + float64(c)*g.cfg.DegreeWidth
			lonNext := g.cfg.MinLongitude + float64(c+1)*g.cfg.DegreeWidth
			zones = append(zones, newZone(len(zones),
				Position{LatitudeDegrees: lat, LongitudeDegrees: lon},
				Position{LatitudeDegrees: latNext, LongitudeDegrees: lonNext},
				g.cfg.EarthRadiusKm))
		}
	}
	g.zones = zones
	atomic.StoreUint32(&g.built, 1)
}

// Built reports whether Build has been called.
func (g *ZoneGrid) Built() bool {
	return atomic.LoadUint32(&g.built) == 1
}

// Config returns the configuration g was created with.
func (g *ZoneGrid) Config() GridConfig { return g.cfg }

// Rows returns the number of rows of zones.
func (g *ZoneGrid) Rows() int { return g.rows }

// Columns returns the number of zones in each row.
func (g *ZoneGrid) Columns() int { return g.cols }

// Len returns the number of zones in the grid.
func (g *ZoneGrid) Len() int { return g.rows * g.cols }

// Index returns the index of the zone containing p. It does not require
// the grid to be built.
func (g *ZoneGrid) Index(p Position) (int, error) {
	lat, lon := p.LatitudeDegrees, p.LongitudeDegrees
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return -1, &OutOfBoundsError{Position: p, Index: -1}
	}
	col := cell(lon, g.cfg.MinLongitude, g.cfg.DegreeWidth)
	row := cell(lat, g.cfg.MinLatitude, g.cfg.DegreeHeight)
	index := row*float64(g.cols) + col

	// Checking each axis keeps a longitude past the eastern edge from
	// wrapping into the next row.
	if col < 0 || col >= float64(g.cols) || row < 0 || row >= float64(g.rows) ||
		index < 0 || index >= float64(g.Len()) {
		i := -1
		if math.Abs(index) < math.MaxInt32 {
			i = int(index)
		}
		return i, &OutOfBoundsError{Position: p, Index: i}
	}
	return int(index), nil
}

// cell returns the number of whole steps from lo to v. The result is
// checked against the corner lo+i*step that Build computes, so a value on
// a zone edge lands in the zone the edge belongs to even when the
// division rounds the other way.
func cell(v, lo, step float64) float64 {
	i := math.Floor((v - lo) / step)
	if v < lo+i*step {
		i--
	} else if v >= lo+(i+1)*step {
		i++
	}
	return i
}

// Resolve returns the zone containing p.
func (g *ZoneGrid) Resolve(p Position) (*Zone, error) {
	if !g.Built() {
		return nil, ErrNotBuilt
	}
	i, err := g.Index(p)
	if err != nil {
		return nil, err
	}
	return g.zones[i], nil
}

// Add resolves the zone containing a and registers a as an inhabitant
// of it.
func (g *ZoneGrid) Add(a *Agent) (*Zone, error) {
	z, err := g.Resolve(a.Position)
	if err != nil {
		return nil, err
	}
	z.AddInhabitant(a)
	return z, nil
}

// Zone returns the zone with index i.
func (g *ZoneGrid) Zone(i int) (*Zone, error) {
	if !g.Built() {
		return nil, ErrNotBuilt
	}
	if i < 0 || i >= len(g.zones) {
		return nil, fmt.Errorf("agentzones: zone index %d is out of range [0, %d)", i, len(g.zones))
	}
	return g.zones[i], nil
}

// Zones returns all of the zones in g in index order. It returns nil if
// g has not been built. The returned slice should not be modified.
func (g *ZoneGrid) Zones() []*Zone {
	if !g.Built() {
		return nil
	}
	return g.zones
}
