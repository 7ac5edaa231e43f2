package annotate

import "github.com/khaledhikmat/vs-tomato/model"

// IService draws the detections onto the frame and returns it encoded as JPEG.
type IService interface {
	Encode(group model.FrameDetections) ([]byte, error)
}
