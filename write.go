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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/goccy/go-json"
	goshp "github.com/jonas-p/go-shp"
)

// wgs84 is the spatial reference of the output files.
const wgs84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

// Output calculates the output variables for g and writes them to the
// Outputter's file. The file format is chosen by extension: ".shp" for
// a shapefile, or ".geojson" or ".json" for GeoJSON.
func (o *Outputter) Output(g *ZoneGrid) error {
	switch strings.ToLower(filepath.Ext(o.fileName)) {
	case ".shp":
		return o.writeShapefile(g)
	case ".geojson", ".json":
		f, err := os.Create(o.fileName)
		if err != nil {
			return fmt.Errorf("agentzones: creating output file: %v", err)
		}
		if err := o.WriteGeoJSON(f, g); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("agentzones: unsupported output file type '%s'; use .shp, .geojson, or .json", filepath.Ext(o.fileName))
	}
}

func (o *Outputter) writeShapefile(g *ZoneGrid) error {
	if err := checkOutputNames(o.outputVariables); err != nil {
		return err
	}
	zones, results, err := o.Results(g)
	if err != nil {
		return err
	}

	vars := o.Variables()
	fields := make([]goshp.Field, len(vars))
	for i, v := range vars {
		fields[i] = goshp.FloatField(v, 14, 8)
	}

	fileBase := strings.TrimSuffix(o.fileName, filepath.Ext(o.fileName))
	shape, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("agentzones: error creating output shapefile: %v", err)
	}
	for i, z := range zones {
		outFields := make([]interface{}, len(vars))
		for j, v := range vars {
			outFields[j] = results[v][i]
		}
		if err = shape.EncodeFields(z.Polygon(), outFields...); err != nil {
			shape.Close()
			return fmt.Errorf("agentzones: error writing output shapefile: %v", err)
		}
	}
	shape.Close()

	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("agentzones: error creating output prj file: %v", err)
	}
	fmt.Fprint(f, wgs84)
	return f.Close()
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string             `json:"type"`
	Geometry   *geojson.Geometry  `json:"geometry"`
	Properties map[string]float64 `json:"properties"`
}

// WriteGeoJSON writes the output variables for g to w as a GeoJSON
// feature collection with one polygon per zone.
func (o *Outputter) WriteGeoJSON(w io.Writer, g *ZoneGrid) error {
	zones, results, err := o.Results(g)
	if err != nil {
		return err
	}
	fc := featureCollection{
		Type:     "FeatureCollection",
		Features: make([]feature, len(zones)),
	}
	for i, z := range zones {
		gj, err := geojson.ToGeoJSON(z.Polygon())
		if err != nil {
			return fmt.Errorf("agentzones: encoding %v: %v", z, err)
		}
		props := make(map[string]float64, len(results))
		for v, r := range results {
			props[v] = r[i]
		}
		fc.Features[i] = feature{Type: "Feature", Geometry: gj, Properties: props}
	}
	e := json.NewEncoder(w)
	if err := e.Encode(fc); err != nil {
		return fmt.Errorf("agentzones: writing GeoJSON: %v", err)
	}
	return nil
}
