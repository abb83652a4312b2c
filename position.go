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

	"github.com/ctessum/geom"
)

// Position is a geographic coordinate in degrees latitude and longitude.
// No range checking is done when a Position is created; positions outside
// of the grid are rejected when they are resolved to a Zone.
type Position struct {
	LatitudeDegrees  float64
	LongitudeDegrees float64
}

// NewPosition returns a Position at the given latitude and longitude,
// both in degrees.
func NewPosition(latitude, longitude float64) Position {
	return Position{LatitudeDegrees: latitude, LongitudeDegrees: longitude}
}

// LatitudeRadians returns the latitude of p in radians.
func (p Position) LatitudeRadians() float64 {
	return p.LatitudeDegrees * math.Pi / 180
}

// LongitudeRadians returns the longitude of p in radians.
func (p Position) LongitudeRadians() float64 {
	return p.LongitudeDegrees * math.Pi / 180
}

// Point returns p as a geometry point with X=longitude and Y=latitude.
func (p Position) Point() geom.Point {
	return geom.Point{X: p.LongitudeDegrees, Y: p.LatitudeDegrees}
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g)", p.LatitudeDegrees, p.LongitudeDegrees)
}
