package capture

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/frames"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

type folderService struct {
	folder string
	files  []string
	pos    int
}

// NewFolder yields every image directly under folder, in name order.
func NewFolder(folder string) frames.IService {
	return &folderService{
		folder: folder,
	}
}

func (svc *folderService) Name() string {
	return svc.folder
}

func (svc *folderService) Open(_ context.Context) error {
	files, err := frames.ListImages(svc.folder)
	if err != nil {
		return err
	}

	svc.files = files
	svc.pos = 0
	lgr.Logger.Info("input folder opened",
		slog.String("folder", svc.folder),
		slog.Int("images", len(files)),
	)
	return nil
}

func (svc *folderService) Next(_ context.Context) (model.Frame, bool, error) {
	if svc.pos >= len(svc.files) {
		return model.Frame{}, false, nil
	}

	path := svc.files[svc.pos]
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return model.Frame{}, false, xerrors.Errorf("unable to read image %s", path)
	}

	frame := model.Frame{
		ID:        filepath.Base(path),
		Index:     svc.pos,
		Timestamp: time.Now(),
		Image:     &img,
	}
	svc.pos++
	return frame, true, nil
}

func (svc *folderService) Close() error {
	svc.files = nil
	return nil
}
