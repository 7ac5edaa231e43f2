package annotate

import (
	"fmt"

	"github.com/khaledhikmat/vs-tomato/model"
)

type fakeService struct {
}

func NewFake() IService {
	return &fakeService{}
}

func (svc *fakeService) Encode(group model.FrameDetections) ([]byte, error) {
	return []byte(fmt.Sprintf("%s:%d", group.Frame.ID, len(group.Objects))), nil
}
