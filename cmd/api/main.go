package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"users-api/cmd/api/app"
	"users-api/cmd/api/server"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code: 0 after a graceful shutdown, 1 when
// startup or the listener fails.
func run() int {
	a, err := app.New(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "application startup failed: %v\n", err)
		return 1
	}

	ctx, stop := server.WithSignal(context.Background(), a.Logger)
	defer stop()

	if err := a.Run(ctx); err != nil {
		a.Logger.Error("application exited with error", zap.Error(err))
		_ = a.Logger.Sync()
		return 1
	}

	return 0
}
