package main

import (
	"os"

	"github.com/jshaw/alphascan/cmd/alphascan/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
