package data

import (
	"context"
	"sync"
	"time"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
)

// MemoryService keeps everything in process memory. It backs DB_DRIVER=memory and tests.
type MemoryService struct {
	mu      sync.Mutex
	records []model.Record
	stats   []model.SchedulerStats
	errors  []interface{}
	failing error
}

func NewMemory() *MemoryService {
	return &MemoryService{}
}

// FailWith makes every subsequent Write return err.
func (svc *MemoryService) FailWith(err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.failing = err
}

func (svc *MemoryService) Write(_ context.Context, rec model.Record) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.failing != nil {
		return svc.failing
	}

	switch rec.(type) {
	case model.GrowthState, model.DiseaseEvent:
		svc.records = append(svc.records, rec)
		return nil
	default:
		return xerrors.Errorf("unsupported record %T", rec)
	}
}

func (svc *MemoryService) NewSchedulerStats(_ context.Context, stats model.SchedulerStats) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	stats.Timestamp = time.Now().Unix()
	svc.stats = append(svc.stats, stats)
	return nil
}

func (svc *MemoryService) NewError(err interface{}) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.errors = append(svc.errors, err)
	return nil
}

func (svc *MemoryService) Ping(_ context.Context) error {
	return nil
}

func (svc *MemoryService) Close() error {
	return nil
}

func (svc *MemoryService) Records() []model.Record {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]model.Record(nil), svc.records...)
}

func (svc *MemoryService) GrowthStates() []model.GrowthState {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	out := []model.GrowthState{}
	for _, r := range svc.records {
		if g, ok := r.(model.GrowthState); ok {
			out = append(out, g)
		}
	}
	return out
}

func (svc *MemoryService) DiseaseEvents() []model.DiseaseEvent {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	out := []model.DiseaseEvent{}
	for _, r := range svc.records {
		if d, ok := r.(model.DiseaseEvent); ok {
			out = append(out, d)
		}
	}
	return out
}

func (svc *MemoryService) SchedulerStats() []model.SchedulerStats {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]model.SchedulerStats(nil), svc.stats...)
}

func (svc *MemoryService) Errors() []interface{} {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]interface{}(nil), svc.errors...)
}
