package main

import (
	"fmt"
	"os"

	"github.com/kailas-cloud/stockdex/cmd/stockdexctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
