package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"PriceLens/internal/notifier"
	"PriceLens/internal/scheduler"
	"PriceLens/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
	log.Println("[INFO] PriceLens starting...")
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	start, end, err := cfg.DateRange()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	}

	var cache scheduler.Invalidator
	if a.cache != nil {
		cache = a.cache
	}

	sched := scheduler.NewScheduler(ctx, a.builder, sender, a.recorder, cache)
	sched.Watchlist = cfg.Schedule.Watchlist
	sched.Windows = a.builder.Windows
	// Until stays zero: scheduled refreshes run up to today.
	sched.From = start
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing watchlist now")
		go sched.RunNow()
	}

	h := server.NewHandler(a.builder, a.recorder, start, end)
	err = server.Run(ctx, cfg.Server.Addr, server.NewRouter(h, a.registry))
	log.Println("[INFO] PriceLens stopped")
	return err
}
