package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"golang.org/x/xerrors"
	_ "modernc.org/sqlite"

	"github.com/khaledhikmat/vs-tomato/model"
)

const dateLayout = "2006-01-02 15:04:05"

type sqliteService struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the database at path and runs the migrations.
func NewSQLite(path string) (IService, error) {
	return newSQLite(path)
}

func newSQLite(path string) (*sqliteService, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open database: %w", err)
	}

	svc := &sqliteService{
		db:   db,
		path: path,
	}

	if err := svc.runMigrations(); err != nil {
		db.Close()
		return nil, xerrors.Errorf("failed to run migrations: %w", err)
	}

	return svc, nil
}

func (svc *sqliteService) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS growth (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			area TEXT NOT NULL,
			green_count INTEGER DEFAULT 0,
			half_ripened_count INTEGER DEFAULT 0,
			fully_ripened_count INTEGER DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS disease (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			area TEXT NOT NULL,
			illness TEXT NOT NULL,
			ill_count INTEGER DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS scheduler_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			pulled INTEGER NOT NULL,
			processed INTEGER NOT NULL,
			discarded INTEGER NOT NULL,
			stop_reason TEXT NOT NULL,
			uptime INTEGER NOT NULL,
			timestamp INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			processor TEXT NOT NULL,
			inner_error TEXT NOT NULL,
			message TEXT NOT NULL,
			stack_trace TEXT NOT NULL,
			misc TEXT NOT NULL DEFAULT '{}'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_growth_date ON growth(date)`,
		`CREATE INDEX IF NOT EXISTS idx_disease_date ON disease(date)`,
	}

	for _, m := range migrations {
		if _, err := svc.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (svc *sqliteService) Write(ctx context.Context, rec model.Record) error {
	switch r := rec.(type) {
	case model.GrowthState:
		_, err := svc.db.ExecContext(ctx,
			`INSERT INTO growth (date, area, green_count, half_ripened_count, fully_ripened_count) VALUES (?, ?, ?, ?, ?)`,
			r.Date.Format(dateLayout), r.Area, r.GreenCount, r.HalfRipenedCount, r.FullyRipenedCount)
		if err != nil {
			return xerrors.Errorf("error adding data to growth: %w", err)
		}
	case model.DiseaseEvent:
		_, err := svc.db.ExecContext(ctx,
			`INSERT INTO disease (date, area, illness, ill_count) VALUES (?, ?, ?, ?)`,
			r.Date.Format(dateLayout), r.Area, r.Illness, r.Count)
		if err != nil {
			return xerrors.Errorf("error adding data to disease: %w", err)
		}
	default:
		return xerrors.Errorf("unsupported record %T", rec)
	}
	return nil
}

func (svc *sqliteService) NewSchedulerStats(ctx context.Context, stats model.SchedulerStats) error {
	stats.Timestamp = time.Now().Unix()
	_, err := svc.db.ExecContext(ctx,
		`INSERT INTO scheduler_stats (name, source, pulled, processed, discarded, stop_reason, uptime, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.Name, stats.Source, stats.Pulled, stats.Processed, stats.Discarded, stats.StopReason, stats.Uptime, stats.Timestamp)
	if err != nil {
		return xerrors.Errorf("error adding scheduler stats: %w", err)
	}
	return nil
}

func (svc *sqliteService) NewError(err interface{}) error {
	e := toErrorData(err)
	misc, mErr := json.Marshal(e.Misc)
	if mErr != nil || e.Misc == nil {
		misc = []byte("{}")
	}

	_, dbErr := svc.db.Exec(
		`INSERT INTO errors (timestamp, processor, inner_error, message, stack_trace, misc) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Timestamp, e.Processor, e.Inner, e.Message, e.StackTrace, string(misc))
	if dbErr != nil {
		return xerrors.Errorf("error adding error record: %w", dbErr)
	}
	return nil
}

func (svc *sqliteService) Ping(ctx context.Context) error {
	return svc.db.PingContext(ctx)
}

func (svc *sqliteService) Close() error {
	return svc.db.Close()
}
