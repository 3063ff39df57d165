package main

import (
	"os"

	"github.com/rtzll/blindspot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
