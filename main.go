// main is the entry point for the gridline CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/gridline/cmd"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/iocache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd.SetContext(ctx)
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	stop()
	iocache.CloseCaching()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
