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

package agentzonesutil

import (
	"fmt"

	"github.com/spatialmodel/agentzones"
	"github.com/spatialmodel/agentzones/internal/hash"
	"github.com/tealeg/xlsx"
)

// Names of the sheets in the summary file.
const (
	SummarySheet = "Summary"
	ZonesSheet   = "Zones"
)

// WriteSummary writes a Microsoft Excel file to fileName with a sheet
// holding the grid-wide statistics in s and a sheet holding one row
// for each occupied zone in g. cfg is used to stamp the file with a
// configuration hash.
func WriteSummary(fileName string, s *agentzones.Summary, g *agentzones.ZoneGrid, cfg *ConfigData) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(SummarySheet)
	if err != nil {
		return fmt.Errorf("agentzones: creating summary sheet: %w", err)
	}
	addIntRow(sheet, "Agents", s.Agents)
	addIntRow(sheet, "Zones", s.Zones)
	addIntRow(sheet, "Occupied zones", s.OccupiedZones)
	addIntRow(sheet, "Max population", s.MaxPopulation)
	addFloatRow(sheet, "Max density (people/km²)", s.MaxDensity)
	traits := s.TraitNames()
	for _, n := range traits {
		addFloatRow(sheet, "Mean "+n, s.MeanTraits[n])
	}
	row := sheet.AddRow()
	row.AddCell().SetString("Configuration")
	row.AddCell().SetString(hash.Hash(cfg))

	sheet, err = f.AddSheet(ZonesSheet)
	if err != nil {
		return fmt.Errorf("agentzones: creating zones sheet: %w", err)
	}
	header := sheet.AddRow()
	for _, h := range append([]string{"Index", "Latitude", "Longitude", "Population", "Area", "Density"}, traits...) {
		header.AddCell().SetString(h)
	}
	for _, z := range agentzones.OccupiedZones(g) {
		row := sheet.AddRow()
		c := z.Centroid()
		row.AddCell().SetInt(z.Index)
		row.AddCell().SetFloat(c.LatitudeDegrees)
		row.AddCell().SetFloat(c.LongitudeDegrees)
		row.AddCell().SetInt(z.Population())
		row.AddCell().SetFloat(z.Area())
		row.AddCell().SetFloat(z.Density())
		for _, n := range traits {
			row.AddCell().SetFloat(z.AverageTrait(n))
		}
	}

	if err := f.Save(fileName); err != nil {
		return fmt.Errorf("agentzones: saving summary file: %w", err)
	}
	return nil
}

func addIntRow(sheet *xlsx.Sheet, name string, v int) {
	row := sheet.AddRow()
	row.AddCell().SetString(name)
	row.AddCell().SetInt(v)
}

func addFloatRow(sheet *xlsx.Sheet, name string, v float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(name)
	row.AddCell().SetFloat(v)
}
