package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/frames"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

type videoService struct {
	source string
	webcam *gocv.VideoCapture
}

// NewVideo reads frames from a video file, a stream URL or a camera index ("0").
func NewVideo(source string) frames.IService {
	return &videoService{
		source: source,
	}
}

func (svc *videoService) Name() string {
	return svc.source
}

func (svc *videoService) Open(_ context.Context) error {
	var device interface{} = svc.source
	if id, err := strconv.Atoi(svc.source); err == nil {
		device = id
	}

	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return xerrors.Errorf("opening video source %s: %w", svc.source, err)
	}

	svc.webcam = webcam
	lgr.Logger.Info("video source opened", slog.String("source", svc.source))
	return nil
}

func (svc *videoService) Next(_ context.Context) (model.Frame, bool, error) {
	if svc.webcam == nil {
		return model.Frame{}, false, xerrors.New("video source not opened")
	}

	img := gocv.NewMat()
	if ok := svc.webcam.Read(&img); !ok || img.Empty() {
		// Crucial to close the image to avoid memory leaks
		img.Close()
		lgr.Logger.Info("failed to grab frame, end of stream", slog.String("source", svc.source))
		return model.Frame{}, false, nil
	}

	index := int(svc.webcam.Get(gocv.VideoCapturePosFrames)) - 1
	return model.Frame{
		ID:        fmt.Sprintf("frame%d.jpg", index),
		Index:     index,
		Timestamp: time.Now(),
		Image:     &img,
	}, true, nil
}

func (svc *videoService) Close() error {
	if svc.webcam == nil {
		return nil
	}
	err := svc.webcam.Close()
	svc.webcam = nil
	return err
}
