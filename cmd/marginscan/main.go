package main

import (
	"os"

	"github.com/rustyeddy/marginscan/cmd/marginscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
