package main

import (
	"os"

	"github.com/rcliao/mem0-hooks/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
