package data

import (
	"context"

	"github.com/khaledhikmat/vs-tomato/model"
)

// IService persists the records that leave the pipeline plus operational stats and errors.
type IService interface {
	Write(ctx context.Context, rec model.Record) error
	NewSchedulerStats(ctx context.Context, stats model.SchedulerStats) error
	NewError(err interface{}) error
	Ping(ctx context.Context) error
	Close() error
}
