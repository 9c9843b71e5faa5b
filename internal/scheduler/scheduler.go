package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"CandleDream/internal/chart"
	"CandleDream/internal/notifier"

	"github.com/robfig/cron/v3"
)

// every fires at a fixed sub-second interval; cron's own @every rounds to
// whole seconds.
type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

// Session is the part of chart.Session the scheduler drives.
type Session interface {
	Tick()
	Toggle(active bool) bool
	RecordStatus() chart.Status
}

// Scheduler manages the tick timer and the status report.
type Scheduler struct {
	Cron     *cron.Cron
	Session  Session
	Notifier notifier.Notifier
	Ctx      context.Context

	mu       sync.Mutex
	tickID   cron.EntryID
	interval time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, s Session, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cron.PrintfLogger(log.Default())),
		),
		Session:  s,
		Notifier: n,
		Ctx:      ctx,
	}
}

// StartTicking schedules Session.Tick every interval, replacing any previous
// tick entry. A tick still running when the next one is due makes that one
// skip.
func (s *Scheduler) StartTicking(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tickID != 0 {
		s.Cron.Remove(s.tickID)
	}
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(s.Session.Tick))
	s.tickID = s.Cron.Schedule(every(interval), job)
	s.interval = interval
	log.Printf("[INFO] ticking every %v", interval)
	return nil
}

// StopTicking removes the tick entry, if any.
func (s *Scheduler) StopTicking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tickID != 0 {
		s.Cron.Remove(s.tickID)
		s.tickID = 0
	}
}

// Interval returns the current tick interval, zero when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tickID == 0 {
		return 0
	}
	return s.interval
}

// RegisterReport sends a status report on the given cron spec. An empty spec
// disables the report.
func (s *Scheduler) RegisterReport(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(spec, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunReportNow executes the report task immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	st := s.Session.RecordStatus()
	s.trySend(notifier.FormatStatus(&st))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		st := s.Session.RecordStatus()
		return notifier.FormatStatus(&st)
	case "/dream":
		if !s.Session.Toggle(true) {
			return "Dream overlay is already on"
		}
		return ""
	case "/wake":
		if !s.Session.Toggle(false) {
			return "Dream overlay is already off"
		}
		return "Dream overlay off"
	default:
		return "Commands:\n• /status\n• /dream\n• /wake"
	}
}

// NotifyActivated is wired as the session's activation callback.
func (s *Scheduler) NotifyActivated(st chart.Status) {
	s.trySend(notifier.FormatActivated(&st))
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
