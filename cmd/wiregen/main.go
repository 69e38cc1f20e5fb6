// Command wiregen generates Go and TypeScript binary codecs from a schema.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/wiregen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}
