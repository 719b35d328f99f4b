package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/nlstn/go-csdlgen/internal/cli"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(2)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
