package cvdraw

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/annotate"
)

var boxColor = color.RGBA{R: 255, G: 64, B: 64, A: 0}

type cvService struct {
}

func New() annotate.IService {
	return &cvService{}
}

func (svc *cvService) Encode(group model.FrameDetections) ([]byte, error) {
	mat, ok := group.Frame.Image.(*gocv.Mat)
	if !ok || mat.Empty() {
		return nil, xerrors.Errorf("frame %s has no image to annotate", group.Frame.ID)
	}

	img := mat.Clone()
	defer img.Close()

	for _, obj := range group.Objects {
		gocv.Rectangle(&img, obj.Box, boxColor, 2)
		gocv.PutText(&img,
			fmt.Sprintf("%s %.2f", obj.ClassLabel, obj.Confidence),
			image.Pt(obj.Box.Min.X, obj.Box.Min.Y-4),
			gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, xerrors.Errorf("encoding frame %s: %w", group.Frame.ID, err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
