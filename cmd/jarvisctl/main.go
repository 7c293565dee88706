package main

import (
	"os"

	"github.com/futig/jarvis-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
