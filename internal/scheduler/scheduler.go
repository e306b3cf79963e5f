package scheduler

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"PriceLens/internal/model"
	"PriceLens/internal/notifier"
	"PriceLens/internal/recorder"
)

// DashboardBuilder runs one dashboard for a symbol.
type DashboardBuilder interface {
	Build(ctx context.Context, symbol string, start, end time.Time) (*model.Dashboard, error)
}

// Sender delivers a formatted report.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Invalidator drops cached price data for a symbol.
type Invalidator interface {
	Invalidate(ctx context.Context, symbol string) error
}

// Scheduler refreshes the watchlist on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Builder   DashboardBuilder
	Notifier  Sender
	Recorder  recorder.Recorder
	Cache     Invalidator
	Watchlist []string
	Windows   []int
	From      time.Time
	// Until is the exclusive end of the range; zero means "now" at run time.
	Until time.Time
	Ctx   context.Context
}

// NewScheduler creates a new Scheduler. notifier and cache may be nil.
func NewScheduler(ctx context.Context, b DashboardBuilder, n Sender, rec recorder.Recorder, cache Invalidator) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Builder:  b,
		Notifier: n,
		Recorder: rec,
		Cache:    cache,
		Ctx:      ctx,
	}
}

// RegisterAll registers the watchlist refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) dateRange() (time.Time, time.Time) {
	end := s.Until
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	}
	return s.From, end
}

func (s *Scheduler) refreshTask() {
	log.Printf("[INFO] refreshing %d symbols", len(s.Watchlist))
	for _, symbol := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		if s.Cache != nil {
			if err := s.Cache.Invalidate(s.Ctx, symbol); err != nil {
				log.Printf("[WARN] invalidate cache for %s: %v", symbol, err)
			}
		}
		s.trySend(s.report(s.Ctx, symbol))
	}
}

// report builds a dashboard for symbol and formats it, or formats the failure.
func (s *Scheduler) report(ctx context.Context, symbol string) string {
	start, end := s.dateRange()
	d, err := s.Builder.Build(ctx, symbol, start, end)
	if err != nil {
		log.Printf("[ERROR] %s refresh: %v", symbol, err)
		return notifier.FormatError(strings.ToUpper(symbol), err)
	}
	return notifier.FormatDashboard(d, s.Windows)
}

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9.^=\-]{1,15}$`)

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/forecast@PriceLensBot GOOG" in group chats
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])

	switch {
	case cmd == "/forecast" && len(fields) == 2:
		return s.report(ctx, fields[1])
	case cmd == "/runs":
		runs, err := s.Recorder.RecentRuns(ctx, "", 10)
		if err != nil {
			log.Printf("[ERROR] list runs: %v", err)
			return "❌ could not load run history"
		}
		return notifier.FormatRuns(runs)
	case len(fields) == 1 && !strings.HasPrefix(cmd, "/") && symbolPattern.MatchString(fields[0]):
		return s.report(ctx, fields[0])
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Printf("[INFO] no notifier configured, report:\n%s", notifier.PlainText(text))
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
