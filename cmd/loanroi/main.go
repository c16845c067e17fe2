package main

import (
	"os"

	"github.com/quantpool/loanroi/cmd/loanroi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
