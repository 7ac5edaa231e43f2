package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
)

// filesDBService keeps each record kind as a JSON array in <folder>/<kind>.json.
type filesDBService struct {
	folder string
	mu     sync.Mutex
}

func NewFilesDB(folder string) IService {
	return &filesDBService{
		folder: folder,
	}
}

func (svc *filesDBService) Write(_ context.Context, rec model.Record) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	switch r := rec.(type) {
	case model.GrowthState:
		return newEntity(r, model.GrowthKind, svc.folder)
	case model.DiseaseEvent:
		return newEntity(r, model.DiseaseKind, svc.folder)
	default:
		return xerrors.Errorf("unsupported record %T", rec)
	}
}

func (svc *filesDBService) NewSchedulerStats(_ context.Context, stats model.SchedulerStats) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	stats.Timestamp = time.Now().Unix()
	return newEntity(stats, "scheduler-stats", svc.folder)
}

func (svc *filesDBService) NewError(err interface{}) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return newEntity(toErrorData(err), "errors", svc.folder)
}

func (svc *filesDBService) Ping(_ context.Context) error {
	if err := os.MkdirAll(svc.folder, 0o755); err != nil {
		return xerrors.Errorf("data folder %s: %w", svc.folder, err)
	}

	probe, err := os.CreateTemp(svc.folder, ".ping-*")
	if err != nil {
		return xerrors.Errorf("data folder %s is not writable: %w", svc.folder, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (svc *filesDBService) Close() error {
	return nil
}

func entityPath(folder, filename string) string {
	return filepath.Join(folder, fmt.Sprintf("%s.json", filename))
}

func newEntity[T any](entity T, filename string, folder string) error {
	entities, err := retrieveEntities[T](filename, folder)
	if err != nil {
		return err
	}

	entities = append(entities, entity)

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return err
	}

	// Write the JSON data to the file (with truncation)
	return os.WriteFile(entityPath(folder, filename), data, 0o644)
}

func retrieveEntities[T any](filename string, folder string) ([]T, error) {
	entities := []T{}

	data, err := os.ReadFile(entityPath(folder, filename))
	if err != nil {
		// WARNING: File not found, return empty slice
		if os.IsNotExist(err) {
			return entities, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, xerrors.Errorf("decoding %s: %w", filename, err)
	}

	return entities, nil
}
