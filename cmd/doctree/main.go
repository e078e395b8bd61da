package main

import (
	"os"

	"github.com/goliatone/go-doctree/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
