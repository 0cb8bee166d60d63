package main

import (
	"os"

	"bookkeeper/internal/adapters/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
