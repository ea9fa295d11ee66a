package main

import (
	"os"

	"healthmap/cmd/healthmap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
