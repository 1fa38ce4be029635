package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

// CycleRunner runs a cycle, implemented by Scheduler
type CycleRunner interface {
	RunCycle(ctx context.Context, dryRun bool) (CycleResult, error)
}

// TriggerParams defines automatic cycle settings
type TriggerParams struct {
	Runner   CycleRunner
	Interval time.Duration
	Timeout  time.Duration  // upper bound for a single cycle
	Location *time.Location // cron timezone, UTC if nil
}

// Trigger runs cycles on a fixed interval. Overlapping runs are skipped.
type Trigger struct {
	TriggerParams
	cron *cron.Cron

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewTrigger makes a trigger, interval must be positive
func NewTrigger(params TriggerParams) (*Trigger, error) {
	if params.Interval <= 0 {
		return nil, fmt.Errorf("invalid interval %v", params.Interval)
	}
	if params.Timeout <= 0 {
		params.Timeout = 5 * time.Minute
	}
	if params.Location == nil {
		params.Location = time.UTC
	}

	t := &Trigger{TriggerParams: params}
	t.cron = cron.New(cron.WithLocation(params.Location),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})))
	if _, err := t.cron.AddFunc(fmt.Sprintf("@every %s", params.Interval), t.run); err != nil {
		return nil, fmt.Errorf("schedule cycle every %v: %w", params.Interval, err)
	}
	return t, nil
}

// Start begins running cycles until ctx is canceled or Stop is called
func (t *Trigger) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.ctx, t.cancel = runCtx, cancel
	t.mu.Unlock()

	t.cron.Start()
	lgr.Printf("[INFO] automatic cycles started, every %v", t.Interval)

	go func() {
		<-runCtx.Done()
		t.Stop()
	}()
}

// Stop halts the trigger and waits for a running cycle to finish
func (t *Trigger) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		if t.cancel != nil {
			t.cancel()
		}
		t.mu.Unlock()
		<-t.cron.Stop().Done()
		lgr.Printf("[INFO] automatic cycles stopped")
	})
}

func (t *Trigger) run() {
	t.mu.Lock()
	parent := t.ctx
	t.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, t.Timeout)
	defer cancel()

	start := time.Now()
	res, err := t.Runner.RunCycle(ctx, false)
	if err != nil {
		lgr.Printf("[ERROR] cycle %s failed: %v", res.ID, err)
		return
	}
	lgr.Printf("[DEBUG] cycle %s finished with %s in %v", res.ID, res.Outcome, time.Since(start))
}

// cronLogger adapts lgr to the cron logger interface
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	lgr.Printf("[DEBUG] cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	lgr.Printf("[WARN] cron: %s: %v %v", msg, err, keysAndValues)
}
