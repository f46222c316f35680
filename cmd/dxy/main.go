package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/dxy-snapshot/internal/app"
	"github.com/samvad-hq/dxy-snapshot/internal/config"
	"github.com/samvad-hq/dxy-snapshot/internal/domain"
	"github.com/samvad-hq/dxy-snapshot/internal/logger"
)

const ticker = "DXY"

func main() {
	os.Exit(run(os.Stdout))
}

// run prints exactly one result line to out and returns the process exit code.
func run(out io.Writer) int {
	reading, err := fetch()
	if err != nil {
		fmt.Fprintln(out, failureLine(err))
		return 1
	}
	fmt.Fprintln(out, successLine(reading.Value))
	return 0
}

func fetch() (domain.IndexReading, error) {
	cfg, err := config.Load()
	if err != nil {
		return domain.IndexReading{}, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return domain.IndexReading{}, fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("dxy snapshot starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshot, err := app.NewSnapshot(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize snapshot", "error", err.Error())
		return domain.IndexReading{}, err
	}
	defer snapshot.Close()

	return snapshot.Run(ctx, ticker)
}

func successLine(value float64) string {
	return fmt.Sprintf("%s Index Level: %.2f", ticker, value)
}

func failureLine(err error) string {
	return fmt.Sprintf("Failed to retrieve %s index: %v", ticker, err)
}
