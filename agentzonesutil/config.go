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
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/agentzones"
	"github.com/spf13/cast"
)

// ConfigData holds the configuration for a run.
type ConfigData struct {
	InputFile        string
	InputFormat      string // "json" or "csv"
	OutputFile       string
	OutputVariables  map[string]string
	OutputEmptyZones bool
	Mask             geom.Polygonal // nil if no mask was specified
	LogFile          string
	LogInterval      int
	SummaryFile      string

	Grid agentzones.GridConfig
}

// LoadConfig unmarshals and checks a viper configuration.
func LoadConfig(cfg *viper.Viper) (*ConfigData, error) {
	gc, err := GridConfig(cfg)
	if err != nil {
		return nil, err
	}
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	outputVars, err := GetStringMapString("OutputVariables", cfg)
	if err != nil {
		return nil, err
	}
	outputVars, err = checkOutputVars(outputVars)
	if err != nil {
		return nil, err
	}
	mask, err := parseMask(cfg.GetString("Mask"))
	if err != nil {
		return nil, err
	}
	inputFile := os.ExpandEnv(cfg.GetString("InputFile"))
	format, err := inputFormat(inputFile, cfg.GetString("InputFormat"))
	if err != nil {
		return nil, err
	}
	summaryFile := os.ExpandEnv(cfg.GetString("SummaryFile"))
	if summaryFile != "" && strings.ToLower(filepath.Ext(summaryFile)) != ".xlsx" {
		return nil, fmt.Errorf("agentzones: SummaryFile must end in .xlsx, but is '%s'", summaryFile)
	}
	return &ConfigData{
		InputFile:        inputFile,
		InputFormat:      format,
		OutputFile:       outputFile,
		OutputVariables:  outputVars,
		OutputEmptyZones: cast.ToBool(cfg.Get("OutputEmptyZones")),
		Mask:             mask,
		LogFile:          checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), outputFile),
		LogInterval:      cast.ToInt(cfg.Get("LogInterval")),
		SummaryFile:      summaryFile,
		Grid:             gc,
	}, nil
}

// GridConfig unmarshals a viper configuration for a zone grid.
func GridConfig(cfg *viper.Viper) (agentzones.GridConfig, error) {
	var c agentzones.GridConfig
	fields := []struct {
		name string
		dst  *float64
	}{
		{"Grid.MinLatitude", &c.MinLatitude},
		{"Grid.MaxLatitude", &c.MaxLatitude},
		{"Grid.MinLongitude", &c.MinLongitude},
		{"Grid.MaxLongitude", &c.MaxLongitude},
		{"Grid.DegreeWidth", &c.DegreeWidth},
		{"Grid.DegreeHeight", &c.DegreeHeight},
		{"Grid.EarthRadiusKm", &c.EarthRadiusKm},
	}
	for _, f := range fields {
		v, err := cast.ToFloat64E(cfg.Get(f.name))
		if err != nil {
			return c, fmt.Errorf("agentzones: parsing grid configuration: %s: %v", f.name, err)
		}
		*f.dst = v
	}
	for _, f := range fields[4:] {
		if !(*f.dst > 0) {
			return c, fmt.Errorf("agentzones: parsing grid configuration: %s=%g but should be >0", f.name, *f.dst)
		}
	}
	return c, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("agentzones: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("agentzones: invalid type for %s: %#v", varName, i)
	}
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("agentzones: there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`agentzones: you need to specify an output file configuration variable (for example: OutputFile="zones.shp")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("agentzones: the OutputFile directory doesn't exist: %v", err)
	}
	switch strings.ToLower(filepath.Ext(f)) {
	case ".shp", ".geojson", ".json":
	default:
		return f, fmt.Errorf("agentzones: OutputFile '%s' must end in .shp, .geojson, or .json", f)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// inputFormat returns the format of the input file, which is either
// specified or determined from the file extension.
func inputFormat(file, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(file), ".")
	}
	format = strings.ToLower(format)
	switch format {
	case "json", "csv":
		return format, nil
	default:
		return "", fmt.Errorf("agentzones: unsupported InputFormat '%s' for InputFile '%s'; "+
			"it must be either json or csv", format, file)
	}
}

// parseMask returns a mask polygon represented by the
// given GeoJSON file.
func parseMask(maskGeoJSONFile string) (geom.Polygonal, error) {
	if maskGeoJSONFile == "" {
		return nil, nil
	}
	b, err := ioutil.ReadFile(os.ExpandEnv(maskGeoJSONFile))
	if err != nil {
		return nil, fmt.Errorf("agentzones: reading mask file: %w", err)
	}
	g, err := geojson.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("agentzones: decoding mask file: %w", err)
	}
	switch m := g.(type) {
	case geom.Polygon:
		return m, nil
	case geom.MultiPolygon:
		return m, nil
	default:
		return nil, fmt.Errorf("agentzones: mask must be a Polygon or MultiPolygon but is %#v", g)
	}
}
