// SPDX-License-Identifier: MIT

// Command argsim simulates and inspects ancestral conversion graphs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/katalvlaran/argraph/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "argsim:", err)
		stop()
		os.Exit(1)
	}
}
