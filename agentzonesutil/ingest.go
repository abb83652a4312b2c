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
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/agentzones"
	"github.com/spf13/cast"
)

// Names of the record fields that hold agent positions, in degrees.
const (
	LatitudeField  = "latitude"
	LongitudeField = "longitude"
)

// Record is a single decoded agent record.
type Record map[string]interface{}

// RecordError is returned when a record cannot be turned into an agent
// or cannot be placed in the grid.
type RecordError struct {
	// Record is the zero-based position of the record in the input.
	Record int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("agentzones: record %d: %v", e.Record, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error { return e.Err }

// ReadRecords decodes agent records from r. format must be either
// "json", for an array of objects, or "csv", for a table with a header row.
func ReadRecords(r io.Reader, format string) ([]Record, error) {
	switch strings.ToLower(format) {
	case "json":
		return readJSON(r)
	case "csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("agentzones: unsupported record format '%s'", format)
	}
}

func readJSON(r io.Reader) ([]Record, error) {
	d := json.NewDecoder(r)
	d.UseNumber()
	var raw []map[string]interface{}
	if err := d.Decode(&raw); err != nil {
		return nil, fmt.Errorf("agentzones: decoding JSON records: %w", err)
	}
	records := make([]Record, len(raw))
	for i, obj := range raw {
		rec := make(Record, len(obj))
		for k, v := range obj {
			if n, ok := v.(json.Number); ok {
				f, err := n.Float64()
				if err != nil {
					return nil, &RecordError{Record: i, Err: fmt.Errorf("field %s: %v", k, err)}
				}
				rec[k] = f
				continue
			}
			rec[k] = v
		}
		records[i] = rec
	}
	return records, nil
}

// readCSV reads a table of records. Cells that parse as numbers are stored
// as float64 and empty cells are left out of the record.
func readCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("agentzones: reading CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	var records []Record
	for i := 0; ; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, &RecordError{Record: i, Err: err}
		}
		rec := make(Record, len(row))
		for j, v := range row {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				rec[header[j]] = f
			} else {
				rec[header[j]] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// NewAgent creates an agent from a record. The position is taken from the
// latitude and longitude fields and every other field becomes an
// attribute of the agent.
func NewAgent(rec Record) (*agentzones.Agent, error) {
	lat, err := coordinate(rec, LatitudeField)
	if err != nil {
		return nil, err
	}
	lon, err := coordinate(rec, LongitudeField)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		if k == LatitudeField || k == LongitudeField {
			continue
		}
		attrs[k] = v
	}
	return agentzones.NewAgent(agentzones.NewPosition(lat, lon), attrs), nil
}

// TraitNames returns the sorted names of the fields that become agent
// traits in at least one of records.
func TraitNames(records []Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, rec := range records {
		for k, v := range rec {
			if k == LatitudeField || k == LongitudeField {
				continue
			}
			if _, ok := seen[k]; ok || !agentzones.IsTrait(v) {
				continue
			}
			seen[k] = struct{}{}
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func coordinate(rec Record, name string) (float64, error) {
	v, ok := rec[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing %s", name)
	}
	if _, ok := v.(bool); ok {
		return 0, fmt.Errorf("invalid %s %v", name, v)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %#v", name, v)
	}
	return f, nil
}

// Ingest creates an agent for each record and adds it to the zone that
// contains it. It stops at the first record that is malformed or outside
// of the grid and returns a *RecordError describing it, along with the
// number of agents added before it. Progress is logged every interval
// records; interval <= 0 turns progress logging off.
func Ingest(g *agentzones.ZoneGrid, records []Record, log logrus.FieldLogger, interval int) (int, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	for i, rec := range records {
		a, err := NewAgent(rec)
		if err != nil {
			return i, &RecordError{Record: i, Err: err}
		}
		if _, err := g.Add(a); err != nil {
			return i, &RecordError{Record: i, Err: err}
		}
		if interval > 0 && (i+1)%interval == 0 {
			log.WithFields(logrus.Fields{
				"records": i + 1,
				"total":   len(records),
			}).Info("ingesting agents")
		}
	}
	return len(records), nil
}
