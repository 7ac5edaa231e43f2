package mode

import (
	"context"
	"log/slog"
	"time"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/pipeline"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

type schedulerResult struct {
	stats model.SchedulerStats
	err   error
}

// Stream samples the configured source once per interval until it is exhausted,
// a disease is found, the viewer quits or the context is cancelled.
func Stream(canxCtx context.Context, svcs pipeline.ServicesFactory) error {
	proc, err := newFrameProcessor(svcs)
	if err != nil {
		return err
	}

	scheduler := pipeline.NewScheduler(svcs.FramesSvc, proc, svcs.CfgSvc.GetSamplingInterval(),
		pipeline.WithClock(svcs.Clock),
		pipeline.WithViewer(svcs.Viewer),
	)

	resultStream := make(chan schedulerResult, 1)
	go func() {
		stats, err := scheduler.Run(canxCtx)
		resultStream <- schedulerResult{stats: stats, err: err}
	}()

	select {
	case r := <-resultStream:
		return finishStream(svcs, r)

	case <-canxCtx.Done():
		lgr.Logger.Info(
			"stream context cancelled",
		)
	}

	// The scheduler only notices cancellation between frames, so an inference call may
	// still be running. The services it uses are released by the caller once Stream
	// returns, so Stream never returns ahead of the scheduler.
	lgr.Logger.Info(
		"stream is waiting for the scheduler to exit",
	)

	period := time.Duration(svcs.CfgSvc.GetModeMaxShutdownTime()) * time.Second
	timer := time.NewTimer(period)
	defer timer.Stop()

	select {
	case r := <-resultStream:
		return finishStream(svcs, r)

	case <-timer.C:
		lgr.Logger.Warn(
			"stream shutdown waiting period expired. Still waiting for the frame in flight",
			slog.Duration("period", period),
		)
	}

	return finishStream(svcs, <-resultStream)
}

func finishStream(svcs pipeline.ServicesFactory, r schedulerResult) error {
	procStats(svcs.DataSvc, r.stats)
	if r.err == nil {
		return nil
	}

	procError(svcs.DataSvc, model.GenError("stream",
		r.err,
		map[string]interface{}{
			"source":    r.stats.Source,
			"pulled":    r.stats.Pulled,
			"processed": r.stats.Processed,
		},
		"scheduler aborted"))
	return r.err
}
