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

// Package agentzones assigns point-located agents to the zones of a
// uniform latitude-longitude grid and calculates per-zone statistics
// such as population, population density, and average trait values.
//
// A ZoneGrid is created from a GridConfig and built once; positions are
// then resolved to zones arithmetically:
//
//	g, err := agentzones.NewZoneGrid(agentzones.DefaultGridConfig())
//	if err != nil {
//		return err
//	}
//	g.Build()
//	z, err := g.Add(agentzones.NewAgent(agentzones.NewPosition(5, -50), attrs))
package agentzones

// Version gives the version number.
const Version = "1.0.0"
