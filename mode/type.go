package mode

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/pipeline"
	"github.com/khaledhikmat/vs-tomato/service/data"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

type Processor func(canxCtx context.Context, svcs pipeline.ServicesFactory) error

// newFrameProcessor validates both models against their class mappings before any
// frame is read.
func newFrameProcessor(svcs pipeline.ServicesFactory) (*pipeline.Processor, error) {
	diseaseTx, err := pipeline.ParseTaxonomy("disease", svcs.CfgSvc.GetDiseaseClasses())
	if err != nil {
		return nil, err
	}

	sizeTx, err := pipeline.ParseTaxonomy("size", svcs.CfgSvc.GetSizeClasses())
	if err != nil {
		return nil, err
	}

	disease, err := pipeline.NewDetector("disease", svcs.DiseaseSvc, diseaseTx)
	if err != nil {
		return nil, err
	}

	size, err := pipeline.NewDetector("size", svcs.SizeSvc, sizeTx)
	if err != nil {
		return nil, err
	}

	return pipeline.NewProcessor(svcs, disease, size), nil
}

func procStats(datasvc data.IService, stats model.SchedulerStats) {
	err := datasvc.NewSchedulerStats(context.Background(), stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store scheduler stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procError(datasvc data.IService, err interface{}) {
	errTemp := datasvc.NewError(err)
	if errTemp != nil {
		lgr.Logger.Error(
			"failed to store error",
			slog.Any("error", errTemp),
		)
	}
}
