package main

import (
	"fmt"
	"os"

	"github.com/i2sales/insights/cmd/i2sales/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
