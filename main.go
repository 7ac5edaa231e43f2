package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/mode"
	"github.com/khaledhikmat/vs-tomato/pipeline"
	"github.com/khaledhikmat/vs-tomato/service/annotate/cvdraw"
	"github.com/khaledhikmat/vs-tomato/service/chart"
	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/data"
	"github.com/khaledhikmat/vs-tomato/service/frames"
	"github.com/khaledhikmat/vs-tomato/service/frames/capture"
	"github.com/khaledhikmat/vs-tomato/service/inference/yolo"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
	"github.com/khaledhikmat/vs-tomato/service/notify"
	"github.com/khaledhikmat/vs-tomato/service/remote"
)

const windowTitle = "tomato"

func main() {
	rootCtx := context.Background()
	canxCtx, canxFn := context.WithCancel(rootCtx)
	defer canxFn()

	// Hook up a signal handler to cancel the context
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		lgr.Logger.Info(
			"received kill signal",
			slog.Any("signal", sig),
		)
		canxFn()
	}()

	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		lgr.Logger.Info("loading env vars from .env file")
		err := godotenv.Load()
		if err != nil {
			lgr.Logger.Warn("no .env file loaded, using the process environment", slog.Any("error", err))
		}
	}

	cfgSvc := config.NewEnv()
	lgr.Setup(cfgSvc.GetLogFile(), cfgSvc.GetLogLevel())
	defer lgr.Close()

	app := &cli.App{
		Name:  "vs-tomato",
		Usage: "watch tomato plants for ripeness and disease",
		Commands: []*cli.Command{
			{
				Name:  "stream",
				Usage: "sample SOURCE once per cooldown period until it ends or a disease is found",
				Action: func(c *cli.Context) error {
					return run(c.Context, cfgSvc, mode.Stream, capture.NewVideo(cfgSvc.GetSource()))
				},
			},
			{
				Name:  "batch",
				Usage: "analyze every image in INPUT as a single run",
				Action: func(c *cli.Context) error {
					return run(c.Context, cfgSvc, mode.Batch, capture.NewFolder(cfgSvc.GetInputFolder()))
				},
			},
			{
				Name:  "ping",
				Usage: "check the database connection",
				Action: func(c *cli.Context) error {
					dataSvc, err := newDataService(cfgSvc)
					if err != nil {
						return err
					}
					defer dataSvc.Close()

					return mode.Ping(c.Context, pipeline.ServicesFactory{
						CfgSvc:  cfgSvc,
						DataSvc: dataSvc,
					})
				},
			},
		},
	}

	if err := app.RunContext(canxCtx, os.Args); err != nil {
		lgr.Logger.Error(
			"mode processor exited",
			lgr.Err(err),
		)
		lgr.Close()
		os.Exit(1)
	}
}

func run(canxCtx context.Context, cfgSvc config.IService, modeProc mode.Processor, framesSvc frames.IService) error {
	svcs, closeFn, err := newServices(cfgSvc, framesSvc)
	defer func() {
		if err := closeFn(); err != nil {
			lgr.Logger.Warn("closing services failed", lgr.Err(err))
		}
	}()
	if err != nil {
		return err
	}

	return modeProc(canxCtx, svcs)
}

// newServices creates the services needed for the mode processors. The returned
// function releases whatever was opened.
func newServices(cfgSvc config.IService, framesSvc frames.IService) (pipeline.ServicesFactory, func() error, error) {
	closers := []func() error{}
	closeFn := func() error {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		return errs
	}

	svcs := pipeline.ServicesFactory{
		CfgSvc:      cfgSvc,
		FramesSvc:   framesSvc,
		AnnotateSvc: cvdraw.New(),
		ChartSvc:    chart.NewNoop(),
		NotifySvc:   notify.NewFake(),
		RemoteSvc:   remote.NewFake(),
		Clock:       clock.New(),
	}

	dataSvc, err := newDataService(cfgSvc)
	if err != nil {
		return svcs, closeFn, err
	}
	svcs.DataSvc = dataSvc
	closers = append(closers, dataSvc.Close)

	diseaseSvc, err := yolo.New("disease", cfgSvc.GetDiseaseModel(), cfgSvc.GetDiseaseLabels(), cfgSvc.GetDetectorParameters())
	if err != nil {
		return svcs, closeFn, err
	}
	svcs.DiseaseSvc = diseaseSvc
	closers = append(closers, diseaseSvc.Close)

	sizeSvc, err := yolo.New("size", cfgSvc.GetSizeModel(), cfgSvc.GetSizeLabels(), cfgSvc.GetDetectorParameters())
	if err != nil {
		return svcs, closeFn, err
	}
	svcs.SizeSvc = sizeSvc
	closers = append(closers, sizeSvc.Close)

	if cfgSvc.IsChartSave() {
		svcs.ChartSvc = chart.NewPlot()
	}
	if cfgSvc.IsEmailEnabled() {
		svcs.NotifySvc = notify.NewEmail(cfgSvc)
	}
	if cfgSvc.IsFTPEnabled() {
		svcs.RemoteSvc = remote.NewFTP(cfgSvc)
	}
	if cfgSvc.IsShowStream() {
		viewer := capture.NewWindow(windowTitle)
		svcs.Viewer = viewer
		closers = append(closers, viewer.Close)
	}

	return svcs, closeFn, nil
}

func newDataService(cfgSvc config.IService) (data.IService, error) {
	switch driver := cfgSvc.GetDatabaseDriver(); driver {
	case "sqlite":
		return data.NewSQLite(cfgSvc.GetDatabasePath())
	case "files":
		return data.NewFilesDB(cfgSvc.GetDataFolder()), nil
	case "memory":
		return data.NewMemory(), nil
	default:
		return nil, xerrors.Errorf("unsupported database driver %q", driver)
	}
}
