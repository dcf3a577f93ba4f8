package main

import (
	"os"

	"github.com/keyrun-app/keyrun/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
