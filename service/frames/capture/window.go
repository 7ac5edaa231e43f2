package capture

import (
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/frames"
)

type windowViewer struct {
	window *gocv.Window
}

// NewWindow opens a debug window; pressing 'q' in it asks the scheduler to stop.
func NewWindow(title string) frames.Viewer {
	return &windowViewer{
		window: gocv.NewWindow(title),
	}
}

func (v *windowViewer) Show(frame model.Frame) bool {
	mat, ok := frame.Image.(*gocv.Mat)
	if !ok || mat.Empty() {
		return false
	}

	v.window.IMShow(*mat)
	return v.window.WaitKey(1)&0xFF == 'q'
}

func (v *windowViewer) Close() error {
	return v.window.Close()
}
