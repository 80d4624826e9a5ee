package main

import (
	"os"

	"github.com/rrbutani/tweet-tree/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
