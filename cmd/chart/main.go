package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CandleDream/internal/chart"
	"CandleDream/internal/config"
	"CandleDream/internal/engine"
	"CandleDream/internal/model"
	"CandleDream/internal/notifier"
	"CandleDream/internal/position"
	"CandleDream/internal/random"
	"CandleDream/internal/recorder"
	"CandleDream/internal/scheduler"
	"CandleDream/internal/web"

	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CandleDream starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init notifier
	var tn *notifier.TelegramNotifier
	var notify notifier.Notifier = notifier.LogNotifier{}
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notify = tn
	}

	book, err := position.NewBook(cfg.Chart.Symbol, model.Side(cfg.Position.Side), cfg.Position.Size, cfg.Position.Entry)
	if err != nil {
		log.Fatalf("[FATAL] init position: %v", err)
	}

	seed := cfg.Chart.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("[INFO] random seed: %d", seed)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := web.NewHub()
	var sched *scheduler.Scheduler
	sess, err := chart.NewSession(chart.Options{
		Symbol:      cfg.Chart.Symbol,
		StartPrice:  cfg.Chart.StartPrice,
		SeedCount:   cfg.Chart.SeedCount,
		Capacity:    cfg.Chart.Window,
		Engine:      engine.Config{TicksPerCandle: cfg.Chart.TicksPerCandle, Step: cfg.Chart.CandleStep},
		NotifyDelay: cfg.Overlay.NotifyDelay,
		Profiles:    cfg.Profiles,
		Source:      random.New(seed),
		Sink:        hub,
		Recorder:    rec,
		Position:    book,
		OnActivated: func(st chart.Status) {
			hub.Activated(st)
			sched.NotifyActivated(st)
		},
	})
	if err != nil {
		log.Fatalf("[FATAL] init chart session: %v", err)
	}
	hub.SetControls(web.Controls{Overlay: sess.Toggle, ShowLast: sess.ShowLast, FitView: sess.FitView})

	// Init scheduler
	sched = scheduler.NewScheduler(ctx, sess, notify)
	if err := sched.StartTicking(cfg.Chart.TickInterval); err != nil {
		log.Fatalf("[FATAL] start ticking: %v", err)
	}
	if err := sched.RegisterReport(cfg.Schedule.ReportCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	srv := &web.Server{Session: sess, Hub: hub, ProjectionCount: cfg.Overlay.ProjectionCount}
	server := &fasthttp.Server{Handler: srv.Handler, Name: "CandleDream"}
	go func() {
		log.Printf("[INFO] serving chart on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	if cfg.Overlay.DreamOnStart {
		log.Println("[INFO] DREAM_ON_START enabled, activating overlay now")
		sess.Activate()
	}

	log.Printf("[INFO] CandleDream session %s is running. Press Ctrl+C to stop.", sess.ID())

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	if err := server.Shutdown(); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] CandleDream stopped")
}
