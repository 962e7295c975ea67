package main

import (
	"os"

	"github.com/castvote-dev/castvote/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
