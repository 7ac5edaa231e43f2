package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/frames"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

type StopReason string

const (
	EndOfStream     StopReason = "end_of_stream"
	DiseaseStop     StopReason = "disease_detected"
	QuitRequested   StopReason = "quit"
	Cancelled       StopReason = "cancelled"
	ProcessingError StopReason = "error"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

// Scheduler pulls frames as fast as the source yields them and processes at most one
// per interval. Frames in between are released unprocessed.
type Scheduler struct {
	source   frames.IService
	proc     FrameProcessor
	interval time.Duration
	clk      clock.Clock
	viewer   frames.Viewer
	state    State
}

type Option func(*Scheduler)

func WithClock(clk clock.Clock) Option {
	return func(s *Scheduler) {
		if clk != nil {
			s.clk = clk
		}
	}
}

func WithViewer(v frames.Viewer) Option {
	return func(s *Scheduler) {
		s.viewer = v
	}
}

func NewScheduler(source frames.IService, proc FrameProcessor, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:   source,
		proc:     proc,
		interval: interval,
		clk:      clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) State() State {
	return s.state
}

// Run blocks until the source is exhausted, a disease is detected, the viewer asks to
// quit, ctx is cancelled or processing fails. StateStopped is terminal.
func (s *Scheduler) Run(ctx context.Context) (model.SchedulerStats, error) {
	stats := model.SchedulerStats{
		Name:   "scheduler",
		Source: s.source.Name(),
	}
	if s.state == StateStopped {
		stats.StopReason = string(Cancelled)
		return stats, nil
	}

	ctx = lgr.WithRun(ctx, uuid.New())
	start := s.clk.Now()
	defer func() {
		s.state = StateStopped
	}()

	if err := s.source.Open(ctx); err != nil {
		stats.StopReason = string(ProcessingError)
		return stats, err
	}
	defer func() {
		if err := s.source.Close(); err != nil {
			lgr.Logger.WarnContext(ctx, "closing frame source failed", lgr.Err(err))
		}
	}()

	s.state = StateRunning
	lgr.Logger.InfoContext(ctx, "scheduler started",
		slog.String("source", stats.Source),
		slog.Duration("interval", s.interval),
	)

	reason, err := s.loop(ctx, &stats)
	stats.StopReason = string(reason)
	stats.Uptime = int64(s.clk.Since(start).Seconds())

	lgr.Logger.InfoContext(ctx, "scheduler stopped",
		slog.String("reason", stats.StopReason),
		slog.Int("pulled", stats.Pulled),
		slog.Int("processed", stats.Processed),
		slog.Int("discarded", stats.Discarded),
	)
	return stats, err
}

func (s *Scheduler) loop(ctx context.Context, stats *model.SchedulerStats) (StopReason, error) {
	last := s.clk.Now()

	for {
		if ctx.Err() != nil {
			return Cancelled, nil
		}

		frame, ok, err := s.source.Next(ctx)
		if err != nil {
			return ProcessingError, err
		}
		if !ok {
			return EndOfStream, nil
		}
		stats.Pulled++

		quit := s.viewer != nil && s.viewer.Show(frame)

		now := s.clk.Now()
		if now.Sub(last) < s.interval {
			stats.Discarded++
			_ = frame.Close()
		} else {
			last = now
			outcome, err := s.process(ctx, frame)
			if err != nil {
				return ProcessingError, err
			}
			stats.Processed++
			if outcome == DiseaseDetected {
				return DiseaseStop, nil
			}
		}

		if quit {
			return QuitRequested, nil
		}
	}
}

func (s *Scheduler) process(ctx context.Context, frame model.Frame) (Outcome, error) {
	defer frame.Close()

	ctx = lgr.WithSpan(ctx)
	lgr.Logger.DebugContext(ctx, "processing frame",
		slog.String("frame", frame.ID),
		slog.Int("index", frame.Index),
	)
	return s.proc.Process(ctx, []model.Frame{frame}, strconv.Itoa(frame.Index))
}
