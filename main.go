package main

import (
	"os"

	"github.com/warefleet/agvsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
