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
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/ctessum/geom"
)

const tolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	return math.Abs(a-b)/math.Max(math.Abs(a), math.Abs(b)) > tolerance
}

func TestZoneStatistics(t *testing.T) {
	g := testGrid(t)
	p := NewPosition(5, -50)
	for _, v := range []float64{0.8, 0.4} {
		if _, err := g.Add(NewAgent(p, map[string]interface{}{Agreeableness: v})); err != nil {
			t.Fatal(err)
		}
	}
	z, err := g.Resolve(p)
	if err != nil {
		t.Fatal(err)
	}
	if z.Index != 34330 {
		t.Errorf("zone index %d, want 34330", z.Index)
	}
	if z.Population() != 2 {
		t.Errorf("population %d, want 2", z.Population())
	}
	if avg := z.AverageTrait(Agreeableness); different(avg, 0.6, tolerance) {
		t.Errorf("average agreeableness %g, want 0.6", avg)
	}
	if d, want := z.Density(), 2/(z.Width()*z.Height()); different(d, want, tolerance) {
		t.Errorf("density %g, want %g", d, want)
	}
}

func TestZoneDimensions(t *testing.T) {
	g := testGrid(t)
	want := math.Pi / 180 * EarthRadiusKm // one degree
	for _, z := range g.Zones() {
		if !(z.Width() > 0) || !(z.Height() > 0) {
			t.Fatalf("%v has width %g and height %g", z, z.Width(), z.Height())
		}
		if different(z.Width(), want, 1e-9) || different(z.Height(), want, 1e-9) {
			t.Fatalf("%v: have %g×%g km, want %g×%g km", z, z.Width(), z.Height(), want, want)
		}
		if different(z.Area(), want*want, 1e-9) {
			t.Fatalf("%v: area %g, want %g", z, z.Area(), want*want)
		}
	}
}

func TestEmptyZone(t *testing.T) {
	g := testGrid(t)
	z, err := g.Resolve(NewPosition(-45.5, 100.2))
	if err != nil {
		t.Fatal(err)
	}
	if z.Population() != 0 {
		t.Errorf("population %d, want 0", z.Population())
	}
	if avg := z.AverageTrait(Agreeableness); avg != 0 {
		t.Errorf("average trait %g, want 0", avg)
	}
	if d := z.Density(); d != 0 {
		t.Errorf("density %g, want 0", d)
	}
	if names := z.TraitNames(); len(names) != 0 {
		t.Errorf("trait names %v, want none", names)
	}
}

func TestAverageTraitMissing(t *testing.T) {
	g := testGrid(t)
	p := NewPosition(10.5, 10.5)
	agents := []*Agent{
		NewAgent(p, map[string]interface{}{Agreeableness: 0.2, "openness": 1.0}),
		NewAgent(p, map[string]interface{}{Agreeableness: 0.4}),
		NewAgent(p, map[string]interface{}{"name": "x"}),
	}
	for _, a := range agents {
		if _, err := g.Add(a); err != nil {
			t.Fatal(err)
		}
	}
	z, _ := g.Resolve(p)
	if avg := z.AverageTrait(Agreeableness); different(avg, 0.3, tolerance) {
		t.Errorf("average agreeableness %g, want 0.3", avg)
	}
	if avg := z.AverageTrait("openness"); avg != 1 {
		t.Errorf("average openness %g, want 1", avg)
	}
	if avg := z.AverageTrait("conscientiousness"); avg != 0 {
		t.Errorf("average of missing trait %g, want 0", avg)
	}
	if names, want := z.TraitNames(), []string{Agreeableness, "openness"}; !reflect.DeepEqual(names, want) {
		t.Errorf("trait names %v, want %v", names, want)
	}
}

func TestAddInhabitantDuplicates(t *testing.T) {
	g := testGrid(t)
	a := NewAgent(NewPosition(0, 0), nil)
	z, err := g.Add(a)
	if err != nil {
		t.Fatal(err)
	}
	z.AddInhabitant(a)
	if z.Population() != 2 {
		t.Errorf("population %d, want 2", z.Population())
	}
	inh := z.Inhabitants()
	if len(inh) != 2 || inh[0] != a || inh[1] != a {
		t.Errorf("inhabitants %v", inh)
	}
	inh[0] = nil
	if z.Inhabitants()[0] != a {
		t.Error("Inhabitants should return a copy")
	}
}

func TestAddInhabitantConcurrent(t *testing.T) {
	g := testGrid(t)
	z, _ := g.Resolve(NewPosition(0, 0))
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			for j := 0; j < 100; j++ {
				z.AddInhabitant(NewAgent(NewPosition(0.5, 0.5), nil))
			}
			wg.Done()
		}()
	}
	wg.Wait()
	if z.Population() != 1000 {
		t.Errorf("population %d, want 1000", z.Population())
	}
}

func TestZoneGeometry(t *testing.T) {
	g := testGrid(t)
	z, _ := g.Zone(34330)
	if c, want := z.Centroid(), NewPosition(5.5, -49.5); c != want {
		t.Errorf("centroid %v, want %v", c, want)
	}
	wantBounds := &geom.Bounds{Min: geom.Point{X: -50, Y: 5}, Max: geom.Point{X: -49, Y: 6}}
	if b := z.Bounds(); !reflect.DeepEqual(b, wantBounds) {
		t.Errorf("bounds %v, want %v", b, wantBounds)
	}
	poly := z.Polygon()
	if a := poly.Area(); different(a, 1, tolerance) {
		t.Errorf("polygon area %g square degrees, want 1", a)
	}
	if !z.Contains(NewPosition(5, -50)) {
		t.Error("zone should contain its lower left corner")
	}
	if z.Contains(NewPosition(6, -49.5)) || z.Contains(NewPosition(5.5, -49)) {
		t.Error("zone should not contain its northern or eastern edges")
	}
}
