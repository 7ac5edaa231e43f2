package pipeline

import (
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

// Update turns run counts into records and hands them to the sink.
type Update struct {
	sink *Sink
	clk  clock.Clock
	area string
}

func NewUpdate(sink *Sink, clk clock.Clock, area string) *Update {
	if clk == nil {
		clk = clock.New()
	}
	return &Update{
		sink: sink,
		clk:  clk,
		area: area,
	}
}

// ForDisease writes one event per frame and illness class seen in that frame.
// Healthy classes are never recorded.
func (u *Update) ForDisease(ctx context.Context, tx Taxonomy, counts []map[string]int) []model.DiseaseEvent {
	now := u.clk.Now()
	events := []model.DiseaseEvent{}
	records := []model.Record{}

	for _, frame := range counts {
		for _, label := range tx.Labels(Illness) {
			n := frame[label]
			if n <= 0 {
				continue
			}
			ev := model.DiseaseEvent{
				Date:    now,
				Area:    u.area,
				Illness: label,
				Count:   n,
			}
			events = append(events, ev)
			records = append(records, ev)
		}
	}

	// Failures are already logged by the sink.
	_ = u.sink.WriteAll(ctx, records)
	return events
}

// ForTomatoState sums the run into one growth state. Confidence plays no part.
func (u *Update) ForTomatoState(ctx context.Context, tx Taxonomy, counts []map[string]int) model.GrowthState {
	state := model.GrowthState{
		Date: u.clk.Now(),
		Area: u.area,
	}

	for _, frame := range counts {
		for label, n := range frame {
			switch tx.Category(label) {
			case Green:
				state.GreenCount += n
			case HalfRipened:
				state.HalfRipenedCount += n
			case FullyRipened:
				state.FullyRipenedCount += n
			}
		}
	}

	lgr.Logger.InfoContext(ctx, "tomato state",
		slog.String("area", state.Area),
		slog.Int("green", state.GreenCount),
		slog.Int("halfRipened", state.HalfRipenedCount),
		slog.Int("fullyRipened", state.FullyRipenedCount),
	)

	_ = u.sink.Write(ctx, state)
	return state
}
