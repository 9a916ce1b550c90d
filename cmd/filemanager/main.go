package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"filemanager/internal/cli"
)

// main is a thin boundary: flag parsing, configuration and execution all
// live in internal/cli so they can be exercised without a process.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := cli.Run(ctx, os.Args[1:], cli.Env{Stdout: os.Stdout, Stderr: os.Stderr})
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(res.ExitCode)
}
