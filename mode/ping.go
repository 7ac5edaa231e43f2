package mode

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/vs-tomato/pipeline"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

// Ping checks that the configured database accepts connections.
func Ping(canxCtx context.Context, svcs pipeline.ServicesFactory) error {
	driver := svcs.CfgSvc.GetDatabaseDriver()
	if err := svcs.DataSvc.Ping(canxCtx); err != nil {
		lgr.Logger.Error("database is not reachable",
			slog.String("driver", driver),
			lgr.Err(err),
		)
		return err
	}

	lgr.Logger.Info("database is reachable", slog.String("driver", driver))
	return nil
}
