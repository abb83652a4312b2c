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

// Command agentzones is a command-line interface for aggregating
// point-located agents into the zones of a uniform latitude/longitude grid.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/agentzones/agentzonesutil"
)

func main() {
	if err := agentzonesutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
