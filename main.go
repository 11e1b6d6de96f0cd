package main

import (
	"os"

	"github.com/marginalia-reader/marginalia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
