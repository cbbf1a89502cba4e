package main

import (
	"fmt"
	"os"

	"github.com/harrison/grape/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "grape: %v\n", err)
		os.Exit(1)
	}
}
