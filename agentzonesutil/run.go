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
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/agentzones"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to w.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	}
	return log
}

// Run reads the agent records specified in cfg, aggregates them into the
// zones of a new grid, and writes the zone statistics to the output file
// and, if one is specified, the summary file. Log messages are written
// both to the command output and to the log file.
func Run(cmd *cobra.Command, cfg *ConfigData) error {
	startTime := time.Now()

	logfile, err := os.Create(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("agentzones: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(cmd.OutOrStdout(), logfile))

	o, err := agentzones.NewOutputter(cfg.OutputFile, cfg.OutputEmptyZones, cfg.OutputVariables, nil)
	if err != nil {
		return err
	}
	log.Info("parsed output variable expressions")
	if cfg.Mask != nil {
		o.SetMask(cfg.Mask)
	}

	g, err := agentzones.NewZoneGrid(cfg.Grid)
	if err != nil {
		return err
	}
	g.Build()
	log.WithField("zones", g.Len()).Info("built zone grid")

	f, err := os.Open(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("agentzones: opening input file: %v", err)
	}
	records, err := ReadRecords(f, cfg.InputFormat)
	f.Close()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":    cfg.InputFile,
		"records": len(records),
	}).Info("read agent records")

	if err := o.CheckModelVars(TraitNames(records)...); err != nil {
		return err
	}

	n, err := Ingest(g, records, log, cfg.LogInterval)
	if err != nil {
		return err
	}

	s, err := agentzones.Summarize(g)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"records": n,
		"zones":   s.OccupiedZones,
	}).Info(s.String())
	for _, t := range s.TraitNames() {
		log.WithField("trait", t).Infof("mean %g", s.MeanTraits[t])
	}

	if err := o.Output(g); err != nil {
		return err
	}
	log.WithField("file", cfg.OutputFile).Info("wrote zone output")

	if cfg.SummaryFile != "" {
		if err := WriteSummary(cfg.SummaryFile, s, g, cfg); err != nil {
			return err
		}
		log.WithField("file", cfg.SummaryFile).Info("wrote summary")
	}

	log.Infof("elapsed time: %v", time.Since(startTime))
	return nil
}

// Grid creates the grid specified in cfg and writes all of its zones
// to the output file. Trait output variables are zero in every zone, and
// a warning is logged for each one.
func Grid(cmd *cobra.Command, cfg *ConfigData) error {
	log := newLogger(cmd.OutOrStdout())

	o, err := agentzones.NewOutputter(cfg.OutputFile, true, cfg.OutputVariables, nil)
	if err != nil {
		return err
	}
	if cfg.Mask != nil {
		o.SetMask(cfg.Mask)
	}
	g, err := agentzones.NewZoneGrid(cfg.Grid)
	if err != nil {
		return err
	}
	for _, v := range o.TraitVariables() {
		log.WithField("variable", v).Warn("not a built-in zone variable; treating it as a trait, which is 0 in every zone")
	}
	g.Build()
	log.WithFields(logrus.Fields{
		"zones":   g.Len(),
		"rows":    g.Rows(),
		"columns": g.Columns(),
	}).Info("built zone grid")
	if err := o.Output(g); err != nil {
		return err
	}
	log.WithField("file", cfg.OutputFile).Info("grid successfully created")
	return nil
}
