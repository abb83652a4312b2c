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
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/agentzones"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to agentzones.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the file holding the agent records.
              Each record must have 'latitude' and 'longitude' fields in degrees;
              any other fields are attached to the agent, with numeric fields
              treated as traits.`,
			shorthand:  "i",
			defaultVal: "agents.json",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InputFormat",
			usage: `
              InputFormat is the format of InputFile, either 'json' (an array of
              objects) or 'csv' (with a header row). If empty, the format is
              determined from the file extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the zone results should be written.
              Files ending in '.shp' are written as shapefiles and files ending in
              '.geojson' or '.json' are written as GeoJSON.`,
			shorthand:  "o",
			defaultVal: "zones.shp",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which zone variables should be included
              in the output file, as a map of output names to expressions. Built-in
              variables are Population, Area (km²), Density (people/km²), Width (km),
              Height (km), Latitude, Longitude, Index, TotalPopulation, and TotalArea.
              Any agent trait name gives the average value of that trait in the zone.
              Expressions can refer to other output variables in braces, e.g.
              '{Pop} / TotalPopulation'. The run command fails before ingesting the
              input if an expression uses a name that is neither built in nor a trait
              of any input record.`,
			defaultVal: map[string]string{
				"Pop":     "Population",
				"Density": "Density",
				"Agree":   agentzones.Agreeableness,
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "OutputEmptyZones",
			usage: `
              OutputEmptyZones specifies whether zones without any agents
              should be included in the output file.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Mask",
			usage: `
              Mask is the path to a GeoJSON file holding a Polygon or
              MultiPolygon in degrees. If specified, only zones whose centers are
              within the mask are included in the output file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It defaults to
              the OutputFile with the extension changed to '.log'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogInterval",
			usage: `
              LogInterval is the number of records between ingestion progress
              messages. Zero or less disables progress messages.`,
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SummaryFile",
			usage: `
              SummaryFile is the path to an '.xlsx' file where a summary of the
              run should be written. If empty, no summary is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.MinLatitude",
			usage: `
              Grid.MinLatitude is the southern edge of the grid in degrees.`,
			defaultVal: agentzones.MinLatitude,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), resolveCmd.Flags()},
		},
		{
			name: "Grid.MaxLatitude",
			usage: `
              Grid.MaxLatitude is the northern edge of the grid in degrees.
              Positions at this latitude are outside of the grid.`,
			defaultVal: agentzones.MaxLatitude,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), resolveCmd.Flags()},
		},
		{
			name: "Grid.MinLongitude",
			usage: `
              Grid.MinLongitude is the western edge of the grid in degrees.`,
			defaultVal: agentzones.MinLongitude,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), resolveCmd.Flags()},
		},
		{
			name: "Grid.MaxLongitude",
			usage: `
              Grid.MaxLongitude is the eastern edge of the grid in degrees.
              Positions at this longitude are outside of the grid.`,
			defaultVal: agentzones.MaxLongitude,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), resolveCmd.Flags()},
		},
		{
			name: "Grid.DegreeWidth",
			usage: `
              Grid.DegreeWidth is the east-west size of each zone in degrees.`,
			defaultVal: agentzones.DegreeWidth,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), resolveCmd.Flags()},
		},
		{
			name: "Grid.DegreeHeight",
			usage: `
              Grid.DegreeHeight is the north-south size of each zone in degrees.`,
			defaultVal: agentzones.DegreeHeight,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), resolveCmd.Flags()},
		},
		{
			name: "Grid.EarthRadiusKm",
			usage: `
              Grid.EarthRadiusKm is the radius of the Earth in km, used to
              calculate zone widths, heights, and areas.`,
			defaultVal: agentzones.EarthRadiusKm,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), resolveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("AGENTZONES")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
			case int:
				set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				set.StringP(option.name, option.shorthand, strings.TrimSpace(b.String()), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(resolveCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("agentzones: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "agentzones",
	Short: "Aggregate point-located agents into grid zones.",
	Long: `agentzones assigns agents with latitude/longitude positions to the zones
of a uniform grid and calculates per-zone population, population density,
and average trait values.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'AGENTZONES_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'. File paths
are additionally allowed to contain environment variables within them.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of agentzones.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("agentzones v%s\n", agentzones.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd ingests agents and writes zone statistics.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Aggregate agents into zones.",
	Long: `run reads the agents in InputFile, assigns each one to the zone
containing it, and writes zone statistics to OutputFile and, optionally,
a summary to SummaryFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, cfg)
	},
	DisableAutoGenTag: true,
}

// gridCmd writes out the empty grid.
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Write the empty zone grid",
	Long: `grid creates the zone grid specified by the Grid configuration
variables and writes every zone to OutputFile, which can be used to
inspect the grid layout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Grid(cmd, cfg)
	},
	DisableAutoGenTag: true,
}

// resolveCmd prints the zone containing a position.
var resolveCmd = &cobra.Command{
	Use:   "resolve LATITUDE LONGITUDE",
	Short: "Print the zone containing a position",
	Long: `resolve prints the index and corners of the zone containing the
given latitude and longitude, in degrees. Use '--' before negative
coordinates, for example 'agentzones resolve -- -12.5 30'.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := cast.ToFloat64E(args[0])
		if err != nil {
			return fmt.Errorf("agentzones: invalid latitude '%s'", args[0])
		}
		lon, err := cast.ToFloat64E(args[1])
		if err != nil {
			return fmt.Errorf("agentzones: invalid longitude '%s'", args[1])
		}
		gc, err := GridConfig(Cfg)
		if err != nil {
			return err
		}
		g, err := agentzones.NewZoneGrid(gc)
		if err != nil {
			return err
		}
		g.Build()
		z, err := g.Resolve(agentzones.NewPosition(lat, lon))
		if err != nil {
			return err
		}
		cmd.Printf("%d %v %v\n", z.Index, z.LowerLeft, z.UpperRight)
		return nil
	},
	DisableAutoGenTag: true,
}
