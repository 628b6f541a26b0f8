package main

import (
	"os"

	"github.com/local/studyai/api/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
