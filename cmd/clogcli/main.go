// Command clogcli is a thin demonstration of the Producer facade: it is
// not part of the core library's contract (spec.md §1 scopes the core to
// the topology manager, produce pipeline, and wire codec, not an operator
// tool), but it exercises the public API end to end.
package main

import (
	"os"

	"github.com/streamworks-oss/clog/cmd/clogcli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
