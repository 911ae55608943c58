package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/harrison/kgls/internal/cmd"
	"github.com/harrison/kgls/internal/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(os.Stderr, err))
}

// exitCode prints err unless it only carries a listing severity, and
// returns the process status for it.
func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code()
	}
	fmt.Fprintf(stderr, "kgls: %v\n", err)
	return models.SeverityMajor.Code()
}
