package mode

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/pipeline"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

const batchIdent = "batch"

// Batch analyzes every frame of the source as a single run.
func Batch(canxCtx context.Context, svcs pipeline.ServicesFactory) error {
	proc, err := newFrameProcessor(svcs)
	if err != nil {
		return err
	}

	source := svcs.FramesSvc
	if err := source.Open(canxCtx); err != nil {
		return err
	}
	defer source.Close()

	frames := []model.Frame{}
	defer func() {
		for _, f := range frames {
			_ = f.Close()
		}
	}()

	for {
		if err := canxCtx.Err(); err != nil {
			return err
		}

		frame, ok, err := source.Next(canxCtx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		frames = append(frames, frame)
	}

	stats := model.SchedulerStats{
		Name:   batchIdent,
		Source: source.Name(),
		Pulled: len(frames),
	}

	if len(frames) == 0 {
		lgr.Logger.Warn("batch source has no frames", slog.String("source", source.Name()))
		stats.StopReason = string(pipeline.EndOfStream)
		procStats(svcs.DataSvc, stats)
		return nil
	}

	ctx := lgr.WithRun(canxCtx, uuid.New())
	outcome, err := proc.Process(ctx, frames, batchIdent)
	if err != nil {
		procError(svcs.DataSvc, model.GenError("batch",
			err,
			map[string]interface{}{"source": source.Name(), "frames": len(frames)},
			"batch processing failed"))
		return err
	}

	stats.Processed = len(frames)
	stats.StopReason = outcome.String()
	procStats(svcs.DataSvc, stats)

	lgr.Logger.InfoContext(ctx, "batch processed",
		slog.String("source", source.Name()),
		slog.Int("frames", len(frames)),
		slog.String("outcome", outcome.String()),
	)
	return nil
}
