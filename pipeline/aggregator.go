package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/annotate"
	"github.com/khaledhikmat/vs-tomato/service/chart"
	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
	"github.com/khaledhikmat/vs-tomato/service/remote"
)

// Aggregate counts the objects of one frame per class. The first object seen with a
// given confidence claims that confidence in the index; later ones are only counted.
func Aggregate(group model.FrameDetections) model.FrameAggregate {
	agg := model.FrameAggregate{
		Counts:          map[string]int{},
		ConfidenceIndex: map[float64]model.Descriptor{},
	}

	for _, obj := range group.Objects {
		agg.Counts[obj.ClassLabel]++
		if _, ok := agg.ConfidenceIndex[obj.Confidence]; ok {
			continue
		}
		agg.ConfidenceIndex[obj.Confidence] = model.Descriptor{
			FrameID:    group.Frame.ID,
			ClassLabel: obj.ClassLabel,
			FrameIndex: group.Frame.Index,
		}
	}
	return agg
}

// Aggregator turns detection groups into a RunResult and emits the per-frame artifacts.
type Aggregator struct {
	cfgSvc      config.IService
	annotateSvc annotate.IService
	chartSvc    chart.IService
	remoteSvc   remote.IService
}

func NewAggregator(svcs ServicesFactory) *Aggregator {
	return &Aggregator{
		cfgSvc:      svcs.CfgSvc,
		annotateSvc: svcs.AnnotateSvc,
		chartSvc:    svcs.ChartSvc,
		remoteSvc:   svcs.RemoteSvc,
	}
}

func (a *Aggregator) AggregateRun(ctx context.Context, groups []model.FrameDetections, ident string) model.RunResult {
	run := make(model.RunResult, 0, len(groups))
	for _, group := range groups {
		agg := Aggregate(group)
		run = append(run, agg)

		a.emit(ctx, group, agg, artifactName(ident, group.Frame.ID))
	}
	return run
}

// emit never fails the run. FTP delivery replaces the chart and local image.
func (a *Aggregator) emit(ctx context.Context, group model.FrameDetections, agg model.FrameAggregate, name string) {
	if a.cfgSvc.IsFTPEnabled() {
		img, err := a.encode(group)
		if err != nil {
			a.warn(ctx, "annotating frame for upload failed", name, err)
			return
		}
		if err := a.remoteSvc.Upload(ctx, img, jpegName(name)); err != nil {
			a.warn(ctx, "frame upload failed", name, err)
		}
		return
	}

	output := a.cfgSvc.GetOutputFolder()

	if a.cfgSvc.IsChartSave() && a.chartSvc != nil {
		if err := a.chartSvc.Render(agg.Counts, name, output); err != nil {
			a.warn(ctx, "chart rendering failed", name, err)
		}
	}

	if !a.cfgSvc.IsSaveImages() || output == "" {
		return
	}

	img, err := a.encode(group)
	if err != nil {
		a.warn(ctx, "annotating frame failed", name, err)
		return
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		a.warn(ctx, "creating output folder failed", name, err)
		return
	}
	if err := os.WriteFile(filepath.Join(output, jpegName(name)), img, 0o644); err != nil {
		a.warn(ctx, "saving frame failed", name, err)
	}
}

func (a *Aggregator) encode(group model.FrameDetections) ([]byte, error) {
	if a.annotateSvc == nil {
		return nil, xerrors.New("no annotator configured")
	}
	return a.annotateSvc.Encode(group)
}

func (a *Aggregator) warn(ctx context.Context, msg, name string, err error) {
	lgr.Logger.ErrorContext(ctx, msg,
		slog.String("frame", name),
		lgr.Err(err),
	)
}

// artifactName drops the frame's own extension so that charts and images get exactly one.
func artifactName(ident, frameID string) string {
	return fmt.Sprintf("%s_%s", ident, strings.TrimSuffix(frameID, filepath.Ext(frameID)))
}

func jpegName(name string) string {
	return name + ".jpg"
}
