package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's own diagnostics (skipped runs, recovered panics)
// through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// schedule runs one job function on a seconds-resolution cron spec. A run
// still in progress when the next one is due is skipped, and a panic in a
// run is logged instead of taking the process down.
type schedule struct {
	name   string
	spec   string
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func newSchedule(name, spec string, logger *slog.Logger) *schedule {
	logger = logger.With("component", name)
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &schedule{
		name: name,
		spec: spec,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *schedule) start(run func(ctx context.Context)) error {
	if _, err := s.cron.AddFunc(s.spec, func() { run(s.ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.InfoContext(s.ctx, "Job started", "schedule", s.spec)
	return nil
}

// stop cancels the run in progress and waits for it to return.
func (s *schedule) stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Job stopped")
}
