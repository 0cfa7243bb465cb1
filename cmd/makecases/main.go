// Command makecases generates correlated random datasets.
package main

import (
	"os"

	"github.com/katalvlaran/makecases/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
