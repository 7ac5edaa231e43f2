package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/khaledhikmat/vs-tomato/model"
)

func newTestSQLite(t *testing.T) *sqliteService {
	t.Helper()
	svc, err := newSQLite(filepath.Join(t.TempDir(), "tomato.db"))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewSQLiteCreatesTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tomato.db")
	svc, err := NewSQLite(dbPath)
	test.That(t, err, test.ShouldBeNil)
	defer svc.Close()

	_, err = os.Stat(dbPath)
	test.That(t, err, test.ShouldBeNil)

	db := svc.(*sqliteService).db
	for _, table := range []string{"growth", "disease", "scheduler_stats", "errors"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, name, test.ShouldEqual, table)
	}

	test.That(t, svc.Ping(context.Background()), test.ShouldBeNil)
}

func TestSQLiteWriteRecords(t *testing.T) {
	svc := newTestSQLite(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	err := svc.Write(ctx, model.GrowthState{
		Date:              date,
		Area:              "unidentified",
		GreenCount:        13,
		HalfRipenedCount:  2,
		FullyRipenedCount: 0,
	})
	test.That(t, err, test.ShouldBeNil)

	err = svc.Write(ctx, model.DiseaseEvent{Date: date, Area: "A", Illness: "Late_Blight", Count: 3})
	test.That(t, err, test.ShouldBeNil)

	var (
		gotDate             string
		green, half, fully int
	)
	err = svc.db.QueryRow("SELECT date, green_count, half_ripened_count, fully_ripened_count FROM growth").
		Scan(&gotDate, &green, &half, &fully)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gotDate, test.ShouldEqual, "2026-10-17 09:30:00")
	test.That(t, []int{green, half, fully}, test.ShouldResemble, []int{13, 2, 0})

	var illness string
	var count int
	err = svc.db.QueryRow("SELECT illness, ill_count FROM disease").Scan(&illness, &count)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, illness, test.ShouldEqual, "Late_Blight")
	test.That(t, count, test.ShouldEqual, 3)
}

func TestSQLiteStatsAndErrors(t *testing.T) {
	svc := newTestSQLite(t)

	err := svc.NewSchedulerStats(context.Background(), model.SchedulerStats{
		Name: "frameScheduler", Source: "0", Pulled: 3, Processed: 1, Discarded: 2, StopReason: "end_of_stream",
	})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, svc.NewError(errors.New("boom")), test.ShouldBeNil)
	test.That(t, svc.NewError(model.GenError("stream", errors.New("inner"), map[string]interface{}{"frame": 4}, "failed %d", 1)), test.ShouldBeNil)

	var processed int
	test.That(t, svc.db.QueryRow("SELECT processed FROM scheduler_stats").Scan(&processed), test.ShouldBeNil)
	test.That(t, processed, test.ShouldEqual, 1)

	var n int
	test.That(t, svc.db.QueryRow("SELECT COUNT(*) FROM errors").Scan(&n), test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 2)

	var misc string
	test.That(t, svc.db.QueryRow("SELECT misc FROM errors WHERE processor = 'stream'").Scan(&misc), test.ShouldBeNil)
	test.That(t, misc, test.ShouldEqual, `{"frame":4}`)
}
