package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/boletos-tracker/internal/common"
	"github.com/joseph-ayodele/boletos-tracker/internal/export"
	repo "github.com/joseph-ayodele/boletos-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out    = flag.String("out", "boletos.xlsx", "output XLSX file path")
		driver = flag.String("driver", "", "override DB_DRIVER (sqlite or postgres)")
		sqlite = flag.String("sqlite", "", "override SQLITE_PATH")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *sqlite != "" {
		cfg.Database.SQLitePath = *sqlite
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()

	drv, pool, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		printError("Error: opening database: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(drv, pool, logger)

	store := repo.NewBillStore(drv, logger)
	if err := store.Initialize(ctx); err != nil {
		printError("Error: initializing schema: %v\n", err)
		os.Exit(1)
	}

	xlsx, err := export.NewService(store, logger).ExportBillsXLSX(ctx)
	if err != nil {
		printError("Error: exporting bills: %v\n", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			printError("Error: creating output directory: %v\n", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		printError("Error: writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}
