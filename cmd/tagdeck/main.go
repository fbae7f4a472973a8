package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tagdeck/internal/services"
)

// Exit codes. Input and configuration problems exit 2 so scripts can tell
// them apart from unexpected faults.
const (
	exitFault = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if services.Recoverable(err) {
			os.Exit(exitUsage)
		}
		os.Exit(exitFault)
	}
}
