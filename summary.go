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
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds grid-wide statistics.
type Summary struct {
	Agents        int // total number of registered inhabitants
	Zones         int
	OccupiedZones int
	MaxPopulation int
	MaxDensity    float64 // people / km²

	// MeanTraits gives, for each trait, the mean of the zone average
	// trait values weighted by the number of agents in each zone that
	// carry the trait.
	MeanTraits map[string]float64
}

// Summarize calculates grid-wide statistics for g.
func Summarize(g *ZoneGrid) (*Summary, error) {
	if !g.Built() {
		return nil, ErrNotBuilt
	}
	s := &Summary{
		Zones:      g.Len(),
		MeanTraits: make(map[string]float64),
	}
	vals := make(map[string][]float64)
	weights := make(map[string][]float64)
	for _, z := range g.Zones() {
		pop := z.Population()
		if pop == 0 {
			continue
		}
		s.Agents += pop
		s.OccupiedZones++
		if pop > s.MaxPopulation {
			s.MaxPopulation = pop
		}
		if d := z.Density(); d > s.MaxDensity {
			s.MaxDensity = d
		}
		counts := make(map[string]int)
		for _, a := range z.Inhabitants() {
			for n := range a.Traits {
				counts[n]++
			}
		}
		for n, c := range counts {
			vals[n] = append(vals[n], z.AverageTrait(n))
			weights[n] = append(weights[n], float64(c))
		}
	}
	for n, v := range vals {
		s.MeanTraits[n] = stat.Mean(v, weights[n])
	}
	return s, nil
}

// TraitNames returns the sorted names of the traits in s.
func (s *Summary) TraitNames() []string {
	names := make([]string, 0, len(s.MeanTraits))
	for n := range s.MeanTraits {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d agents in %d of %d zones; max population %d; max density %.4g people/km²",
		s.Agents, s.OccupiedZones, s.Zones, s.MaxPopulation, s.MaxDensity)
}

// OccupiedZones returns the zones of g that have at least one inhabitant.
func OccupiedZones(g *ZoneGrid) []*Zone {
	var o []*Zone
	for _, z := range g.Zones() {
		if z.Population() > 0 {
			o = append(o, z)
		}
	}
	return o
}
