package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"PriceLens/internal/config"
	"PriceLens/internal/notifier"
)

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	symbol := cfg.DataSource.Symbol
	if len(args) == 1 {
		symbol = args[0]
	}
	start, end, err := resolveRange(cfg, startFlag, endFlag)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if refreshCache && a.cache != nil {
		if err := a.cache.Invalidate(ctx, symbol); err != nil {
			log.Printf("[WARN] invalidate cache: %v", err)
		}
	}

	d, err := a.builder.Build(ctx, symbol, start, end)
	if err != nil {
		return fmt.Errorf("%s: %w", symbol, err)
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		return writeJSON(out, d)
	default:
		_, err := fmt.Fprint(out, notifier.PlainText(notifier.FormatDashboard(d, a.builder.Windows)))
		return err
	}
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.recorder.RecentRuns(cmd.Context(), runsSymbol, runsLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, runs)
	}
	_, err = fmt.Fprintln(out, notifier.PlainText(notifier.FormatRuns(runs)))
	return err
}

// resolveRange applies the --start/--end overrides to the configured range.
func resolveRange(cfg *config.Config, start, end string) (time.Time, time.Time, error) {
	from, to, err := cfg.DateRange()
	if err != nil {
		return from, to, err
	}
	if start != "" {
		if from, err = config.ParseDate(start); err != nil {
			return from, to, fmt.Errorf("--start: %w", err)
		}
	}
	if end != "" {
		if to, err = config.ParseDate(end); err != nil {
			return from, to, fmt.Errorf("--end: %w", err)
		}
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("end %s is not after start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return from, to, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
