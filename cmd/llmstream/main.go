package main

import (
	"os"

	"github.com/mdreader/llmstream/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
