// Command zdb inspects the data directory of a Zeebe broker without running it.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Zelldon/zdb-sub001/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
