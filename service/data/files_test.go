package data

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/khaledhikmat/vs-tomato/model"
)

func TestFilesDBAppendsRecords(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "data")
	svc := NewFilesDB(folder)
	ctx := context.Background()

	test.That(t, svc.Ping(ctx), test.ShouldBeNil)

	now := time.Now().UTC().Truncate(time.Second)
	test.That(t, svc.Write(ctx, model.DiseaseEvent{Date: now, Area: "A", Illness: "Leaf_Mold", Count: 1}), test.ShouldBeNil)
	test.That(t, svc.Write(ctx, model.DiseaseEvent{Date: now, Area: "A", Illness: "Early_Blight", Count: 2}), test.ShouldBeNil)
	test.That(t, svc.Write(ctx, model.GrowthState{Date: now, Area: "A", GreenCount: 5}), test.ShouldBeNil)

	diseases, err := retrieveEntities[model.DiseaseEvent](model.DiseaseKind, folder)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diseases, test.ShouldHaveLength, 2)
	test.That(t, diseases[1].Illness, test.ShouldEqual, "Early_Blight")
	test.That(t, diseases[1].Date.Equal(now), test.ShouldBeTrue)

	growth, err := retrieveEntities[model.GrowthState](model.GrowthKind, folder)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, growth, test.ShouldHaveLength, 1)
	test.That(t, growth[0].GreenCount, test.ShouldEqual, 5)
}

func TestFilesDBStatsAndErrors(t *testing.T) {
	folder := t.TempDir()
	svc := NewFilesDB(folder)

	test.That(t, svc.NewSchedulerStats(context.Background(), model.SchedulerStats{Name: "frameScheduler", Processed: 2}), test.ShouldBeNil)
	test.That(t, svc.NewError(model.GenError("batch", os.ErrNotExist, nil, "no input")), test.ShouldBeNil)

	raw, err := os.ReadFile(filepath.Join(folder, "errors.json"))
	test.That(t, err, test.ShouldBeNil)

	var errs []errorData
	test.That(t, json.Unmarshal(raw, &errs), test.ShouldBeNil)
	test.That(t, errs, test.ShouldHaveLength, 1)
	test.That(t, errs[0].Processor, test.ShouldEqual, "batch")
	test.That(t, errs[0].Message, test.ShouldEqual, "no input")

	stats, err := retrieveEntities[model.SchedulerStats]("scheduler-stats", folder)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats[0].Processed, test.ShouldEqual, 2)
	test.That(t, stats[0].Timestamp, test.ShouldBeGreaterThan, 0)
}

func TestFilesDBCorruptFile(t *testing.T) {
	folder := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(folder, "growth.json"), []byte("{not json"), 0o644), test.ShouldBeNil)

	err := NewFilesDB(folder).Write(context.Background(), model.GrowthState{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMemoryFailWith(t *testing.T) {
	svc := NewMemory()
	test.That(t, svc.Write(context.Background(), model.GrowthState{GreenCount: 1}), test.ShouldBeNil)

	svc.FailWith(os.ErrPermission)
	test.That(t, svc.Write(context.Background(), model.GrowthState{}), test.ShouldEqual, os.ErrPermission)
	test.That(t, svc.GrowthStates(), test.ShouldHaveLength, 1)
	test.That(t, svc.DiseaseEvents(), test.ShouldBeEmpty)
}
