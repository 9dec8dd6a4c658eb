package main

import (
	"os"

	"github.com/sirosfoundation/go-dpiva/cmd/dpiva/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
