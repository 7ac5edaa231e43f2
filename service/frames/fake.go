package frames

import (
	"context"
	"fmt"
	"time"

	"github.com/khaledhikmat/vs-tomato/model"
)

type FakeService struct {
	frames int
	before func(index int)
	pulled int
	closed int
	opened bool
}

// NewFake yields n frames. before, if set, runs ahead of every pull; tests use it to
// move a mock clock between frames.
func NewFake(n int, before func(index int)) *FakeService {
	return &FakeService{
		frames: n,
		before: before,
	}
}

func (svc *FakeService) Name() string {
	return "fake"
}

func (svc *FakeService) Open(_ context.Context) error {
	svc.opened = true
	return nil
}

func (svc *FakeService) Next(_ context.Context) (model.Frame, bool, error) {
	if !svc.opened {
		return model.Frame{}, false, fmt.Errorf("fake source not opened")
	}

	if svc.pulled >= svc.frames {
		return model.Frame{}, false, nil
	}

	if svc.before != nil {
		svc.before(svc.pulled)
	}

	frame := model.Frame{
		ID:        fmt.Sprintf("image%d.jpg", svc.pulled),
		Index:     svc.pulled,
		Timestamp: time.Now(),
		Image:     &fakeImage{closed: &svc.closed},
	}
	svc.pulled++
	return frame, true, nil
}

func (svc *FakeService) Close() error {
	svc.opened = false
	return nil
}

// Pulled is the number of frames handed out so far.
func (svc *FakeService) Pulled() int {
	return svc.pulled
}

// Released is the number of frame images closed by the consumer.
func (svc *FakeService) Released() int {
	return svc.closed
}

type fakeImage struct {
	closed *int
}

func (img *fakeImage) Close() error {
	*img.closed++
	return nil
}
