package frames

import (
	"context"

	"github.com/khaledhikmat/vs-tomato/model"
)

// IService is a pull-based frame source. Next returns ok=false once the source is exhausted.
type IService interface {
	Name() string
	Open(ctx context.Context) error
	Next(ctx context.Context) (model.Frame, bool, error)
	Close() error
}

// Viewer displays pulled frames and reports whether the user asked to quit.
type Viewer interface {
	Show(frame model.Frame) bool
	Close() error
}
