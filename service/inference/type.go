package inference

import (
	"context"
	"image"

	"github.com/khaledhikmat/vs-tomato/model"
)

// Detection is one raw object found by a model, before its class index is resolved.
type Detection struct {
	ClassIndex int
	Confidence float32
	Box        image.Rectangle
}

// IService is an opaque detection model. Infer returns one group per input frame,
// in input order.
type IService interface {
	Infer(ctx context.Context, frames []model.Frame) ([][]Detection, error)
	ClassNames() map[int]string
	Close() error
}
