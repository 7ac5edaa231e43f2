package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

const diseaseMessage = "Disease is detected!"

type Outcome int

const (
	FrameProcessed Outcome = iota
	DiseaseDetected
)

func (o Outcome) String() string {
	if o == DiseaseDetected {
		return "disease_detected"
	}
	return "frame_processed"
}

// FrameProcessor analyzes a set of frames. ident prefixes every artifact it produces.
type FrameProcessor interface {
	Process(ctx context.Context, frames []model.Frame, ident string) (Outcome, error)
}

// Processor runs the disease pass and, when it comes back clean, the size pass.
type Processor struct {
	cfgSvc     config.IService
	disease    *Detector
	size       *Detector
	aggregator *Aggregator
	sink       *Sink
	update     *Update
	clk        clock.Clock
}

func NewProcessor(svcs ServicesFactory, disease, size *Detector) *Processor {
	clk := svcs.Clock
	if clk == nil {
		clk = clock.New()
	}

	sink := NewSink(svcs.DataSvc, svcs.NotifySvc)
	return &Processor{
		cfgSvc:     svcs.CfgSvc,
		disease:    disease,
		size:       size,
		aggregator: NewAggregator(svcs),
		sink:       sink,
		update:     NewUpdate(sink, clk, svcs.CfgSvc.GetArea()),
		clk:        clk,
	}
}

func (p *Processor) Process(ctx context.Context, frames []model.Frame, ident string) (Outcome, error) {
	groups, err := p.disease.Run(ctx, frames)
	if err != nil {
		return FrameProcessed, err
	}

	diseaseRun := p.aggregator.AggregateRun(ctx, groups, ident+"_disease")
	if NewAnalyzer(diseaseRun, p.disease.Taxonomy(), p.update).CheckForIllness(ctx, p.cfgSvc.GetDiseaseConfidence()) {
		_ = p.sink.Notify(ctx, diseaseMessage)
		return DiseaseDetected, nil
	}

	groups, err = p.size.Run(ctx, frames)
	if err != nil {
		return FrameProcessed, err
	}

	sizeRun := p.aggregator.AggregateRun(ctx, groups, ident+"_size")
	analyzer := NewAnalyzer(sizeRun, p.size.Taxonomy(), p.update)

	if n, ok := analyzer.CheckForReady(p.cfgSvc.GetSizeConfidence(), p.cfgSvc.GetSizeRipenedCount()); ok {
		_ = p.sink.Notify(ctx, fmt.Sprintf("There are %d ready tomatoes to be harvested!", n))
	}

	p.update.ForTomatoState(ctx, p.size.Taxonomy(), sizeRun.Counts())

	estimate := analyzer.EstimateNextReady(p.clk.Now())
	lgr.Logger.InfoContext(ctx, estimate.Message(),
		slog.String("ident", ident),
		slog.Int("count", estimate.Count),
	)
	return FrameProcessed, nil
}
