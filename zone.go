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
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/stat"
)

// Zone is a single rectangular cell of a ZoneGrid. A Zone holds references
// to the agents located within it but does not own them. Zones are created
// by ZoneGrid.Build and should not be created directly.
type Zone struct {
	// Index is the position of the zone in the grid, in row-major order
	// starting from the south-west corner.
	Index int

	LowerLeft  Position
	UpperRight Position

	earthRadius float64 // km

	mu          sync.Mutex // guards inhabitants
	inhabitants []*Agent
}

func newZone(index int, lowerLeft, upperRight Position, earthRadius float64) *Zone {
	return &Zone{
		Index:       index,
		LowerLeft:   lowerLeft,
		UpperRight:  upperRight,
		earthRadius: earthRadius,
	}
}

// AddInhabitant registers a as being located in z. The same agent may be
// added more than once; no uniqueness check is performed.
func (z *Zone) AddInhabitant(a *Agent) {
	z.mu.Lock()
	z.inhabitants = append(z.inhabitants, a)
	z.mu.Unlock()
}

// Inhabitants returns a copy of the list of agents in z.
func (z *Zone) Inhabitants() []*Agent {
	z.mu.Lock()
	defer z.mu.Unlock()
	o := make([]*Agent, len(z.inhabitants))
	copy(o, z.inhabitants)
	return o
}

// Population returns the number of inhabitants of z.
func (z *Zone) Population() int {
	z.mu.Lock()
	defer z.mu.Unlock()
	return len(z.inhabitants)
}

// Width returns the east-west extent of z in km, using a flat
// approximation of the angular span.
func (z *Zone) Width() float64 {
	return math.Abs(z.UpperRight.LongitudeRadians()-z.LowerLeft.LongitudeRadians()) * z.earthRadius
}

// Height returns the north-south extent of z in km.
func (z *Zone) Height() float64 {
	return math.Abs(z.UpperRight.LatitudeRadians()-z.LowerLeft.LatitudeRadians()) * z.earthRadius
}

// Area returns the area of z in km².
func (z *Zone) Area() float64 {
	return z.Width() * z.Height()
}

// Density returns the number of inhabitants per km².
func (z *Zone) Density() float64 {
	return float64(z.Population()) / z.Area()
}

// AverageTrait returns the mean value of the named trait across the
// inhabitants of z that carry it. It returns 0 when no inhabitant
// carries the trait, including when z is empty.
func (z *Zone) AverageTrait(name string) float64 {
	z.mu.Lock()
	vals := make([]float64, 0, len(z.inhabitants))
	for _, a := range z.inhabitants {
		if v, ok := a.Traits[name]; ok {
			vals = append(vals, v)
		}
	}
	z.mu.Unlock()
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// TraitNames returns the sorted names of all traits carried by at least
// one inhabitant of z.
func (z *Zone) TraitNames() []string {
	z.mu.Lock()
	defer z.mu.Unlock()
	seen := make(map[string]struct{})
	for _, a := range z.inhabitants {
		for n := range a.Traits {
			seen[n] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether p falls within z. The southern and western
// edges are inclusive and the northern and eastern edges are exclusive,
// matching the way positions are resolved.
func (z *Zone) Contains(p Position) bool {
	return z.LowerLeft.LatitudeDegrees <= p.LatitudeDegrees &&
		p.LatitudeDegrees < z.UpperRight.LatitudeDegrees &&
		z.LowerLeft.LongitudeDegrees <= p.LongitudeDegrees &&
		p.LongitudeDegrees < z.UpperRight.LongitudeDegrees
}

// Centroid returns the center of z.
func (z *Zone) Centroid() Position {
	return Position{
		LatitudeDegrees:  (z.LowerLeft.LatitudeDegrees + z.UpperRight.LatitudeDegrees) / 2,
		LongitudeDegrees: (z.LowerLeft.LongitudeDegrees + z.UpperRight.LongitudeDegrees) / 2,
	}
}

// Bounds returns the extent of z in degrees.
func (z *Zone) Bounds() *geom.Bounds {
	return &geom.Bounds{Min: z.LowerLeft.Point(), Max: z.UpperRight.Point()}
}

// Polygon returns the outline of z in degrees as a closed,
// counter-clockwise ring.
func (z *Zone) Polygon() geom.Polygon {
	ll, ur := z.LowerLeft.Point(), z.UpperRight.Point()
	return geom.Polygon{{
		ll,
		{X: ur.X, Y: ll.Y},
		ur,
		{X: ll.X, Y: ur.Y},
		ll,
	}}
}

func (z *Zone) String() string {
	return fmt.Sprintf("zone %d [%v, %v)", z.Index, z.LowerLeft, z.UpperRight)
}
