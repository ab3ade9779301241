package main

import (
	"os"

	"github.com/Dephilia/rpoaurk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
