package main

import (
	"os"

	"github.com/viant/changetrack/cmd/changetrack/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
