package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tomlsort/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && errors.CodeOf(err) != errors.CheckFailed {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(errors.ExitCode(err))
}
