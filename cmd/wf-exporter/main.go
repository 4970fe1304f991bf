// Package main provides the CLI entrypoint for wf-exporter.
//
// wf-exporter post-processes the output of `databricks bundle generate`:
//   - locates the notebooks, scripts, SQL files and wheels each task references
//   - moves them to a workspace-mirroring layout and rewrites the YAML paths
//   - replaces environment-specific literals and spark conf keys
//   - records a resource key to job id mapping for `bundle deployment bind`
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	exitOK          = 0
	exitFatal       = 1
	exitItemsFailed = 2
)

// itemsFailedError reports that the run completed with failed items.
type itemsFailedError struct {
	failed int
}

func (e *itemsFailedError) Error() string {
	return fmt.Sprintf("%d item(s) failed to export", e.failed)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	var failed *itemsFailedError

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &failed):
		fmt.Fprintln(stderr, "Error:", err)
		return exitItemsFailed
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return exitFatal
	}
}
