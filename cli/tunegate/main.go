package main

import (
	"os"

	tunegatecmder "github.com/papercomputeco/tunegate/cmd/tunegate"
)

func main() {
	cmd := tunegatecmder.NewTunegateCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
