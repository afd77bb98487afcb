package main

import (
	"os"

	"github.com/ecsops/ecsctl/cmd/ecsctl/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:], os.Stdout, os.Stderr))
}
