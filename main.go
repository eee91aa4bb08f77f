package main

import (
	"os"

	"github.com/lankawattwise/lankawattwise/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
