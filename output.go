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
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// Built-in zone variables that can be used in output expressions.
var zoneVariables = []string{
	"Population", "Area", "Density", "Width", "Height",
	"Latitude", "Longitude", "Index",
	"TotalPopulation", "TotalArea",
}

// braceVar matches references to other output variables, e.g. "{Pop}".
var braceVar = regexp.MustCompile(`\{(.*?)\}`)

// Outputter holds output parameters.
//
// outputVariables maps the names of the variables for which data
// should be returned to expressions that define how the
// requested data should be calculated. These expressions can utilize the
// built-in zone variables (Population, Area, Density, Width, Height,
// Latitude, Longitude, Index, TotalPopulation, TotalArea), the average
// value of any agent trait (by trait name), other output variables
// enclosed in braces, and functions.
//
// modelVariables is automatically generated based on the variables that
// are required to calculate the requested output variables.
type Outputter struct {
	fileName        string
	allZones        bool
	outputVariables map[string]string
	expressions     map[string]*govaluate.EvaluableExpression
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
	mask            geom.Polygonal
}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'log(x)' which gives the natural logarithm of x.
//
// 'sqrt(x)' which gives the square root of x.
//
// 'abs(x)' which gives the absolute value of x.
//
// If allZones is true, zones without inhabitants are included in the output.
func NewOutputter(fileName string, allZones bool, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("agentzones: no output variables specified")
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":  unaryFunc("exp", math.Exp),
		"log":  unaryFunc("log", math.Log),
		"sqrt": unaryFunc("sqrt", math.Sqrt),
		"abs":  unaryFunc("abs", math.Abs),
	}
	for key, val := range outputFunctions {
		funcs[key] = val
	}

	o := &Outputter{
		fileName:        fileName,
		allZones:        allZones,
		outputVariables: make(map[string]string, len(outputVariables)),
		expressions:     make(map[string]*govaluate.EvaluableExpression, len(outputVariables)),
		outputFunctions: funcs,
	}
	for k, v := range outputVariables {
		o.outputVariables[k] = v
	}
	if err := o.expandReferences(); err != nil {
		return nil, err
	}

	var vars []string
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("agentzones: output variable %s: %v", key, err)
		}
		o.expressions[key] = expression
		vars = append(vars, expression.Vars()...)
	}
	o.modelVariables = removeDuplicates(vars)
	sort.Strings(o.modelVariables)
	return o, nil
}

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("agentzones: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		v, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("agentzones: invalid argument %v for function '%s'", arg[0], name)
		}
		return f(v), nil
	}
}

// expandReferences replaces each "{Name}" in an output expression with the
// expression for output variable Name, in parentheses.
func (o *Outputter) expandReferences() error {
	for key := range o.outputVariables {
		// Each expansion pass resolves one level of nesting, so more passes
		// than there are variables means there is a cycle.
		for i := 0; ; i++ {
			val := o.outputVariables[key]
			matches := braceVar.FindAllStringSubmatch(val, -1)
			if len(matches) == 0 {
				break
			}
			if i > len(o.outputVariables) {
				return fmt.Errorf("agentzones: output variable %s has a circular reference", key)
			}
			for _, m := range matches {
				ref, ok := o.outputVariables[m[1]]
				if !ok {
					return fmt.Errorf("agentzones: output variable %s refers to undefined output variable '%s'", key, m[1])
				}
				val = strings.Replace(val, m[0], "("+ref+")", -1)
			}
			o.outputVariables[key] = val
		}
	}
	return nil
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

// Variables returns the sorted names of the output variables.
func (o *Outputter) Variables() []string {
	vars := make([]string, 0, len(o.outputVariables))
	for k := range o.outputVariables {
		vars = append(vars, k)
	}
	sort.Strings(vars)
	return vars
}

// ModelVariables returns the built-in variables and trait names that
// the output expressions depend on.
func (o *Outputter) ModelVariables() []string { return o.modelVariables }

// TraitVariables returns the model variables that are not built-in zone
// variables and so must be supplied as agent traits.
func (o *Outputter) TraitVariables() []string {
	var traits []string
	for _, v := range o.modelVariables {
		if !isZoneVariable(v) {
			traits = append(traits, v)
		}
	}
	return traits
}

func isZoneVariable(v string) bool {
	for _, z := range zoneVariables {
		if v == z {
			return true
		}
	}
	return false
}

// FileName returns the path the output will be written to.
func (o *Outputter) FileName() string { return o.fileName }

// SetMask restricts the output to zones whose centroids are within mask.
// A nil mask removes the restriction.
func (o *Outputter) SetMask(mask geom.Polygonal) { o.mask = mask }

// CheckModelVars checks whether the variables required to calculate the
// output variables are either built-in zone variables or one of the
// given trait names.
func (o *Outputter) CheckModelVars(traits ...string) error {
	available := make(map[string]struct{})
	for _, v := range zoneVariables {
		available[v] = struct{}{}
	}
	for _, t := range traits {
		available[t] = struct{}{}
	}
	for _, v := range o.modelVariables {
		if _, ok := available[v]; !ok {
			return fmt.Errorf("agentzones: undefined variable name '%s'", v)
		}
	}
	return nil
}

// checkOutputNames checks (1) if any output variable names exceed 10 characters
// and (2) if any output variable names include characters that are unsupported
// in shapefile field names.
func checkOutputNames(o map[string]string) error {
	valid := regexp.MustCompile(`^[A-Za-z]\w*$`)
	for key := range o {
		long := len(key) > 10
		badChars := !valid.MatchString(key)
		if long && badChars {
			return fmt.Errorf("agentzones: output variable name '%s' exceeds 10 characters and includes unsupported character(s)", key)
		} else if long {
			return fmt.Errorf("agentzones: output variable name '%s' exceeds 10 characters", key)
		} else if badChars {
			return fmt.Errorf("agentzones: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// outputZones returns the zones of g that should be included in the
// output.
func (o *Outputter) outputZones(g *ZoneGrid) []*Zone {
	var zones []*Zone
	for _, z := range g.Zones() {
		if !o.allZones && z.Population() == 0 {
			continue
		}
		if o.mask != nil && z.Centroid().Point().Within(o.mask) == geom.Outside {
			continue
		}
		zones = append(zones, z)
	}
	return zones
}

// Results calculates the output variables for each output zone of g.
// It returns the zones and, for each output variable, one value per zone.
func (o *Outputter) Results(g *ZoneGrid) ([]*Zone, map[string][]float64, error) {
	if !g.Built() {
		return nil, nil, ErrNotBuilt
	}
	zones := o.outputZones(g)

	pops := make([]float64, len(zones))
	areas := make([]float64, len(zones))
	for i, z := range zones {
		pops[i] = float64(z.Population())
		areas[i] = z.Area()
	}
	totalPop, totalArea := floats.Sum(pops), floats.Sum(areas)

	results := make(map[string][]float64, len(o.expressions))
	for k := range o.expressions {
		results[k] = make([]float64, len(zones))
	}
	for i, z := range zones {
		c := z.Centroid()
		params := map[string]interface{}{
			"Population":      pops[i],
			"Area":            areas[i],
			"Density":         pops[i] / areas[i],
			"Width":           z.Width(),
			"Height":          z.Height(),
			"Latitude":        c.LatitudeDegrees,
			"Longitude":       c.LongitudeDegrees,
			"Index":           float64(z.Index),
			"TotalPopulation": totalPop,
			"TotalArea":       totalArea,
		}
		for _, v := range o.modelVariables {
			if _, ok := params[v]; !ok {
				// Traits not carried by any inhabitant average to zero.
				params[v] = z.AverageTrait(v)
			}
		}
		for k, e := range o.expressions {
			r, err := e.Evaluate(params)
			if err != nil {
				return nil, nil, fmt.Errorf("agentzones: evaluating output variable %s for %v: %v", k, z, err)
			}
			v, ok := r.(float64)
			if !ok {
				return nil, nil, fmt.Errorf("agentzones: output variable %s evaluated to non-numeric value %v", k, r)
			}
			results[k][i] = v
		}
	}
	return zones, results, nil
}
