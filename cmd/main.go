package main

import (
	"os"

	"github.com/soundprediction/pedagogue/cmd/pedagogue"
)

func main() {
	if err := pedagogue.Execute(); err != nil {
		os.Exit(1)
	}
}
