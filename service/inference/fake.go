package inference

import (
	"context"

	"github.com/khaledhikmat/vs-tomato/model"
)

// FakeFunc produces the detections for one frame.
type FakeFunc func(frame model.Frame) ([]Detection, error)

type FakeService struct {
	names map[int]string
	fn    FakeFunc
	calls int
}

func NewFake(names map[int]string, fn FakeFunc) *FakeService {
	return &FakeService{
		names: names,
		fn:    fn,
	}
}

func (svc *FakeService) Infer(_ context.Context, frames []model.Frame) ([][]Detection, error) {
	svc.calls++
	results := make([][]Detection, 0, len(frames))
	for _, frame := range frames {
		if svc.fn == nil {
			results = append(results, nil)
			continue
		}
		dets, err := svc.fn(frame)
		if err != nil {
			return nil, err
		}
		results = append(results, dets)
	}
	return results, nil
}

func (svc *FakeService) ClassNames() map[int]string {
	return svc.names
}

func (svc *FakeService) Calls() int {
	return svc.calls
}

func (svc *FakeService) Close() error {
	return nil
}
