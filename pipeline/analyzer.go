package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

const (
	readyFromDays = 5
	readyToDays   = 7
)

// Analyzer applies the decision rules to the result of one pass.
type Analyzer struct {
	run      model.RunResult
	taxonomy Taxonomy
	update   *Update
}

func NewAnalyzer(run model.RunResult, tx Taxonomy, upd *Update) *Analyzer {
	return &Analyzer{
		run:      run,
		taxonomy: tx,
		update:   upd,
	}
}

func (a *Analyzer) anyConfidence(pred func(float64) bool) bool {
	return lo.SomeBy(a.run, func(agg model.FrameAggregate) bool {
		return lo.SomeBy(lo.Keys(agg.ConfidenceIndex), pred)
	})
}

func (a *Analyzer) anyCount(pred func(int) bool) bool {
	return lo.SomeBy(a.run, func(agg model.FrameAggregate) bool {
		return lo.SomeBy(lo.Values(agg.Counts), pred)
	})
}

func (a *Analyzer) AnyConfidenceAbove(x float64) bool {
	return a.anyConfidence(func(c float64) bool { return c > x })
}

func (a *Analyzer) AnyConfidenceBelow(x float64) bool {
	return a.anyConfidence(func(c float64) bool { return c < x })
}

func (a *Analyzer) AnyCountAbove(n int) bool {
	return a.anyCount(func(c int) bool { return c > n })
}

func (a *Analyzer) AnyCountBelow(n int) bool {
	return a.anyCount(func(c int) bool { return c < n })
}

// CheckForIllness reports an illness when any illness class was counted and any
// detection of the run, whatever its class, is more confident than threshold.
// Disease events are recorded when it does.
func (a *Analyzer) CheckForIllness(ctx context.Context, threshold float64) bool {
	illnesses := a.taxonomy.Labels(Illness)
	seen := lo.SomeBy(a.run, func(agg model.FrameAggregate) bool {
		return lo.SomeBy(illnesses, func(label string) bool { return agg.Counts[label] > 0 })
	})
	if !seen || !a.AnyConfidenceAbove(threshold) {
		return false
	}

	events := a.update.ForDisease(ctx, a.taxonomy, a.run.Counts())
	lgr.Logger.WarnContext(ctx, "illness detected", slog.Int("events", len(events)))
	return true
}

// CheckForReady counts fully ripened detections above minConfidence, provided some
// class was counted more than minCount times in a frame.
func (a *Analyzer) CheckForReady(minConfidence float64, minCount int) (int, bool) {
	if !a.AnyCountAbove(minCount) {
		return 0, false
	}

	ready := 0
	for _, agg := range a.run {
		for conf, desc := range agg.ConfidenceIndex {
			if conf > minConfidence && a.taxonomy.Category(desc.ClassLabel) == FullyRipened {
				ready++
			}
		}
	}
	return ready, ready > 0
}

// EstimateNextReady assumes every half ripened tomato ripens within 5 to 7 days.
func (a *Analyzer) EstimateNextReady(now time.Time) model.NextReadyEstimate {
	half := 0
	for _, agg := range a.run {
		for label, n := range agg.Counts {
			if a.taxonomy.Category(label) == HalfRipened {
				half += n
			}
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return model.NextReadyEstimate{
		Count: half,
		From:  today.AddDate(0, 0, readyFromDays),
		To:    today.AddDate(0, 0, readyToDays),
	}
}
