package pipeline

import (
	"github.com/benbjohnson/clock"

	"github.com/khaledhikmat/vs-tomato/service/annotate"
	"github.com/khaledhikmat/vs-tomato/service/chart"
	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/data"
	"github.com/khaledhikmat/vs-tomato/service/frames"
	"github.com/khaledhikmat/vs-tomato/service/inference"
	"github.com/khaledhikmat/vs-tomato/service/notify"
	"github.com/khaledhikmat/vs-tomato/service/remote"
)

// ServicesFactory carries every collaborator a mode processor needs. main builds it once.
type ServicesFactory struct {
	CfgSvc      config.IService
	DataSvc     data.IService
	NotifySvc   notify.IService
	RemoteSvc   remote.IService
	ChartSvc    chart.IService
	AnnotateSvc annotate.IService
	FramesSvc   frames.IService
	Viewer      frames.Viewer
	SizeSvc     inference.IService
	DiseaseSvc  inference.IService
	Clock       clock.Clock
}
