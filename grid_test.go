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
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
)

func testGrid(t *testing.T) *ZoneGrid {
	g, err := NewZoneGrid(DefaultGridConfig())
	if err != nil {
		t.Fatal(err)
	}
	g.Build()
	return g
}

func TestBuild(t *testing.T) {
	g := testGrid(t)
	if n := len(g.Zones()); n != 64800 {
		t.Fatalf("have %d zones, want 64800", n)
	}
	if g.Rows() != 180 || g.Columns() != 360 {
		t.Errorf("have %d×%d zones, want 180×360", g.Rows(), g.Columns())
	}
	first := g.Zones()
	g.Build()
	second := g.Zones()
	if len(second) != 64800 {
		t.Fatalf("after second build: have %d zones, want 64800", len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("zone %d changed after second build", i)
		}
	}
}

func TestBuildConcurrent(t *testing.T) {
	g, err := NewZoneGrid(DefaultGridConfig())
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			g.Build()
			wg.Done()
		}()
	}
	wg.Wait()
	if n := len(g.Zones()); n != 64800 {
		t.Errorf("have %d zones, want 64800", n)
	}
}

func TestBuildOrder(t *testing.T) {
	g := testGrid(t)
	for i, z := range g.Zones() {
		if z.Index != i {
			t.Fatalf("zone %d has index %d", i, z.Index)
		}
		row, col := i/360, i%360
		wantLat, wantLon := -90+float64(row), -180+float64(col)
		if z.LowerLeft.LatitudeDegrees != wantLat || z.LowerLeft.LongitudeDegrees != wantLon {
			t.Fatalf("zone %d lower left: have %v, want (%g, %g)", i, z.LowerLeft, wantLat, wantLon)
		}
		if z.UpperRight.LatitudeDegrees != wantLat+1 || z.UpperRight.LongitudeDegrees != wantLon+1 {
			t.Fatalf("zone %d upper right: have %v, want (%g, %g)", i, z.UpperRight, wantLat+1, wantLon+1)
		}
	}
}

func TestIndex(t *testing.T) {
	g := testGrid(t)
	tests := []struct {
		lat, lon float64
		index    int
	}{
		{lat: 5, lon: -50, index: 34330},
		{lat: -90, lon: -180, index: 0},
		{lat: 89.999, lon: 179.999, index: 64799},
		{lat: -89.5, lon: -179.5, index: 0},
		{lat: -90, lon: 179.5, index: 359},
		{lat: -89, lon: -180, index: 360},
		{lat: 0, lon: 0, index: 90*360 + 180},
		{lat: -0.5, lon: -0.5, index: 89*360 + 179},
		// One float step inside an edge.
		{lat: math.Nextafter(90, 0), lon: 0, index: 179*360 + 180},
		{lat: 0, lon: math.Nextafter(180, 0), index: 90*360 + 359},
		{lat: -1e-17, lon: 0, index: 89*360 + 180},
		{lat: 0, lon: -1e-17, index: 90*360 + 179},
	}
	for _, test := range tests {
		i, err := g.Index(NewPosition(test.lat, test.lon))
		if err != nil {
			t.Errorf("(%g, %g): %v", test.lat, test.lon, err)
			continue
		}
		if i != test.index {
			t.Errorf("(%g, %g): have index %d, want %d", test.lat, test.lon, i, test.index)
		}
		z, err := g.Resolve(NewPosition(test.lat, test.lon))
		if err != nil {
			t.Fatal(err)
		}
		if z.Index != test.index {
			t.Errorf("(%g, %g): resolved zone %d, want %d", test.lat, test.lon, z.Index, test.index)
		}
		if !z.Contains(NewPosition(test.lat, test.lon)) {
			t.Errorf("(%g, %g) is not within %v", test.lat, test.lon, z)
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	g := testGrid(t)
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{name: "north pole", lat: 90, lon: 0},
		{name: "antimeridian", lat: 5, lon: 180},
		{name: "south", lat: -90.5, lon: 0},
		{name: "west", lat: 0, lon: -180.1},
		{name: "far north", lat: 1000, lon: 0},
		{name: "far east", lat: 0, lon: 1e300},
		{name: "NaN", lat: math.NaN(), lon: 0},
		{name: "Inf", lat: 0, lon: math.Inf(-1)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := NewPosition(test.lat, test.lon)
			z, err := g.Resolve(p)
			if err == nil {
				t.Fatalf("resolved to %v, want error", z)
			}
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("have error %v, want ErrOutOfBounds", err)
			}
			var oob *OutOfBoundsError
			if !errors.As(err, &oob) {
				t.Fatalf("error %v is not *OutOfBoundsError", err)
			}
			if oob.Position != p && !math.IsNaN(test.lat) {
				t.Errorf("error position %v, want %v", oob.Position, p)
			}
		})
	}
	t.Run("north pole index", func(t *testing.T) {
		i, err := g.Index(NewPosition(90, 0))
		if err == nil {
			t.Fatal("want error")
		}
		if i != 64980 {
			t.Errorf("computed index %d, want 64980", i)
		}
	})
}

func TestResolveNotBuilt(t *testing.T) {
	g, err := NewZoneGrid(DefaultGridConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Resolve(NewPosition(0, 0)); err != ErrNotBuilt {
		t.Errorf("have error %v, want ErrNotBuilt", err)
	}
	if g.Built() {
		t.Error("Resolve should not build the grid")
	}
	if g.Zones() != nil {
		t.Error("unbuilt grid should have no zones")
	}
	if _, err := g.Zone(0); err != ErrNotBuilt {
		t.Errorf("have error %v, want ErrNotBuilt", err)
	}
}

func TestResolveContains(t *testing.T) {
	g := testGrid(t)
	edges := []Position{
		NewPosition(math.Nextafter(90, 0), 0),
		NewPosition(0, math.Nextafter(180, 0)),
		NewPosition(-1e-17, 0),
		NewPosition(0, -1e-17),
		NewPosition(math.Nextafter(90, 0), math.Nextafter(180, 0)),
		NewPosition(-90, -180),
	}
	for _, p := range edges {
		z, err := g.Resolve(p)
		if err != nil {
			t.Fatalf("%v: %v", p, err)
		}
		if !z.Contains(p) {
			t.Errorf("%v is not within %v", p, z)
		}
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100000; i++ {
		p := NewPosition(r.Float64()*180-90, r.Float64()*360-180)
		z, err := g.Resolve(p)
		if err != nil {
			t.Fatalf("%v: %v", p, err)
		}
		if !z.Contains(p) {
			t.Fatalf("%v is not within %v", p, z)
		}
	}
}

// Two positions share a zone if and only if their floored coordinates
// are equal.
func TestResolveCollisionFree(t *testing.T) {
	g := testGrid(t)
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 50000; i++ {
		p1 := NewPosition(r.Float64()*180-90, r.Float64()*360-180)
		var p2 Position
		if i%2 == 0 { // same cell
			p2 = NewPosition(math.Floor(p1.LatitudeDegrees)+r.Float64()*0.999,
				math.Floor(p1.LongitudeDegrees)+r.Float64()*0.999)
		} else {
			p2 = NewPosition(r.Float64()*180-90, r.Float64()*360-180)
		}
		z1, err := g.Resolve(p1)
		if err != nil {
			t.Fatal(err)
		}
		z2, err := g.Resolve(p2)
		if err != nil {
			t.Fatal(err)
		}
		sameFloor := math.Floor(p1.LatitudeDegrees) == math.Floor(p2.LatitudeDegrees) &&
			math.Floor(p1.LongitudeDegrees) == math.Floor(p2.LongitudeDegrees)
		if (z1 == z2) != sameFloor {
			t.Fatalf("%v and %v: same zone=%v, same floored coordinates=%v", p1, p2, z1 == z2, sameFloor)
		}
	}
}

func TestGridConfig(t *testing.T) {
	t.Run("coarse", func(t *testing.T) {
		cfg := DefaultGridConfig()
		cfg.DegreeWidth, cfg.DegreeHeight = 10, 5
		g, err := NewZoneGrid(cfg)
		if err != nil {
			t.Fatal(err)
		}
		g.Build()
		if g.Len() != 36*36 || len(g.Zones()) != 36*36 {
			t.Errorf("have %d zones, want %d", len(g.Zones()), 36*36)
		}
		i, err := g.Index(NewPosition(5, -50))
		if err != nil {
			t.Fatal(err)
		}
		if want := 19*36 + 13; i != want {
			t.Errorf("have index %d, want %d", i, want)
		}
	})
	t.Run("fine", func(t *testing.T) {
		cfg := GridConfig{
			MinLatitude: 40, MaxLatitude: 41,
			MinLongitude: -75, MaxLongitude: -74,
			DegreeWidth: 0.1, DegreeHeight: 0.1,
			EarthRadiusKm: EarthRadiusKm,
		}
		g, err := NewZoneGrid(cfg)
		if err != nil {
			t.Fatal(err)
		}
		g.Build()
		if len(g.Zones()) != 100 {
			t.Fatalf("have %d zones, want 100", len(g.Zones()))
		}
		last := g.Zones()[99]
		if math.Abs(last.UpperRight.LatitudeDegrees-41) > 1e-12 ||
			math.Abs(last.UpperRight.LongitudeDegrees+74) > 1e-12 {
			t.Errorf("last zone upper right %v, want (41, -74)", last.UpperRight)
		}
		if _, err := g.Resolve(NewPosition(39.99, -74.5)); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("have error %v, want ErrOutOfBounds", err)
		}
		if _, err := g.Resolve(last.UpperRight); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("upper right corner: have error %v, want ErrOutOfBounds", err)
		}
	})
	t.Run("fine corners", func(t *testing.T) {
		g, err := NewZoneGrid(GridConfig{
			MinLatitude: 40, MaxLatitude: 41,
			MinLongitude: -75, MaxLongitude: -74,
			DegreeWidth: 0.1, DegreeHeight: 0.1,
			EarthRadiusKm: EarthRadiusKm,
		})
		if err != nil {
			t.Fatal(err)
		}
		g.Build()
		for i, z := range g.Zones() {
			inside := NewPosition(math.Nextafter(z.UpperRight.LatitudeDegrees, -90),
				math.Nextafter(z.UpperRight.LongitudeDegrees, -180))
			for _, p := range []Position{z.LowerLeft, z.Centroid(), inside} {
				r, err := g.Resolve(p)
				if err != nil {
					t.Fatalf("%v in zone %d: %v", p, i, err)
				}
				if r.Index != i || !r.Contains(p) {
					t.Errorf("%v in zone %d %v resolved to zone %d %v", p, i, z, r.Index, r)
				}
			}
		}
	})
	invalid := []struct {
		name string
		mod  func(*GridConfig)
	}{
		{name: "zero width", mod: func(c *GridConfig) { c.DegreeWidth = 0 }},
		{name: "negative height", mod: func(c *GridConfig) { c.DegreeHeight = -1 }},
		{name: "radius", mod: func(c *GridConfig) { c.EarthRadiusKm = 0 }},
		{name: "latitude order", mod: func(c *GridConfig) { c.MinLatitude, c.MaxLatitude = 10, -10 }},
		{name: "latitude range", mod: func(c *GridConfig) { c.MaxLatitude = 91 }},
		{name: "longitude range", mod: func(c *GridConfig) { c.MinLongitude = -181 }},
		{name: "not a multiple", mod: func(c *GridConfig) { c.DegreeWidth = 7 }},
		{name: "too many zones", mod: func(c *GridConfig) { c.DegreeWidth = 1e-6 }},
	}
	for _, test := range invalid {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultGridConfig()
			test.mod(&cfg)
			if _, err := NewZoneGrid(cfg); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestGridConfigMaxZones(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.DegreeWidth, cfg.DegreeHeight = 1./1024, 1./1024
	_, err := NewZoneGrid(cfg)
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "at most 33554432") {
		t.Errorf("error %q does not give the zone limit", err)
	}

	cfg.DegreeWidth, cfg.DegreeHeight = 0.25, 0.25
	g, err := NewZoneGrid(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 1440*720 {
		t.Errorf("have %d zones, want %d", g.Len(), 1440*720)
	}
}

func TestZoneLookup(t *testing.T) {
	g := testGrid(t)
	z, err := g.Zone(34330)
	if err != nil {
		t.Fatal(err)
	}
	if z.LowerLeft != NewPosition(5, -50) {
		t.Errorf("zone 34330 lower left %v, want (5, -50)", z.LowerLeft)
	}
	if _, err := g.Zone(64800); err == nil {
		t.Error("want error for index 64800")
	}
	if _, err := g.Zone(-1); err == nil {
		t.Error("want error for index -1")
	}
}
