package pipeline

import (
	"context"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/data"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
	"github.com/khaledhikmat/vs-tomato/service/notify"
)

// Sink is the best-effort front of persistence and notifications. Every failure is
// logged here and returned; callers are free to carry on. Cancellation of ctx does not
// reach the services: a frame that was processed is always recorded in full.
type Sink struct {
	dataSvc   data.IService
	notifySvc notify.IService
}

func NewSink(dataSvc data.IService, notifySvc notify.IService) *Sink {
	return &Sink{
		dataSvc:   dataSvc,
		notifySvc: notifySvc,
	}
}

func (s *Sink) Write(ctx context.Context, rec model.Record) error {
	if s.dataSvc == nil {
		return nil
	}

	if err := s.dataSvc.Write(context.WithoutCancel(ctx), rec); err != nil {
		lgr.Logger.ErrorContext(ctx, "storing record failed",
			slog.String("kind", rec.Kind()),
			slog.Any("record", rec),
			lgr.Err(err),
		)
		return err
	}
	return nil
}

func (s *Sink) WriteAll(ctx context.Context, recs []model.Record) error {
	var errs error
	for _, rec := range recs {
		errs = multierr.Append(errs, s.Write(ctx, rec))
	}
	return errs
}

func (s *Sink) Notify(ctx context.Context, text string) error {
	if s.notifySvc == nil {
		return nil
	}

	if err := s.notifySvc.Send(context.WithoutCancel(ctx), text); err != nil {
		lgr.Logger.ErrorContext(ctx, "notification failed",
			slog.String("message", text),
			lgr.Err(err),
		)
		return err
	}
	return nil
}
