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
	"sort"

	"github.com/spf13/cast"
)

// Agreeableness is the name of the personality trait carried by the
// agents in the example data set.
const Agreeableness = "agreeableness"

// Agent is a point-located entity. Numeric attributes are kept in Traits so
// that they can be aggregated by zone, and any other attributes are kept
// verbatim in Extra.
type Agent struct {
	Position Position

	// Traits holds numeric attributes, e.g. "agreeableness".
	Traits map[string]float64

	// Extra holds attributes that are not numeric.
	Extra map[string]interface{}
}

// NewAgent creates an agent at pos. Each attribute in attrs whose value
// is a number is stored as a trait; all other attributes, including
// strings, are stored in Extra. attrs is not retained.
func NewAgent(pos Position, attrs map[string]interface{}) *Agent {
	a := &Agent{
		Position: pos,
		Traits:   make(map[string]float64),
		Extra:    make(map[string]interface{}),
	}
	for name, val := range attrs {
		if v, ok := numeric(val); ok {
			a.Traits[name] = v
			continue
		}
		a.Extra[name] = val
	}
	return a
}

// IsTrait reports whether NewAgent would store an attribute with value val
// as a trait.
func IsTrait(val interface{}) bool {
	_, ok := numeric(val)
	return ok
}

// numeric returns val as a float64 if it holds a Go number.
func numeric(val interface{}) (float64, bool) {
	switch val.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
	default:
		return 0, false
	}
	v, err := cast.ToFloat64E(val)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Trait returns the value of the named trait and whether a has it.
func (a *Agent) Trait(name string) (float64, bool) {
	v, ok := a.Traits[name]
	return v, ok
}

// TraitNames returns the sorted names of the traits of a.
func (a *Agent) TraitNames() []string {
	names := make([]string, 0, len(a.Traits))
	for n := range a.Traits {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
