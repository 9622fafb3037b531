package main

import (
	"os"

	"github.com/valc-lang/valc/cmd/valc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
