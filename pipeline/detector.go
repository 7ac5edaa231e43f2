package pipeline

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/inference"
)

// Detector runs one model over frames and resolves class labels. It holds no results.
type Detector struct {
	name     string
	svc      inference.IService
	taxonomy Taxonomy
}

// NewDetector fails if a class of the model is missing from the taxonomy.
func NewDetector(name string, svc inference.IService, tx Taxonomy) (*Detector, error) {
	if err := tx.Validate(svc.ClassNames()); err != nil {
		return nil, err
	}

	return &Detector{
		name:     name,
		svc:      svc,
		taxonomy: tx,
	}, nil
}

func (d *Detector) Name() string {
	return d.name
}

func (d *Detector) Taxonomy() Taxonomy {
	return d.taxonomy
}

// Run returns one group per frame in input order.
func (d *Detector) Run(ctx context.Context, frames []model.Frame) ([]model.FrameDetections, error) {
	results, err := d.svc.Infer(ctx, frames)
	if err != nil {
		return nil, xerrors.Errorf("%s inference: %w", d.name, err)
	}
	if len(results) != len(frames) {
		return nil, xerrors.Errorf("%s inference: %d results for %d frames", d.name, len(results), len(frames))
	}

	names := d.svc.ClassNames()
	groups := make([]model.FrameDetections, 0, len(frames))
	for i, frame := range frames {
		objects := make([]model.DetectedObject, 0, len(results[i]))
		for _, det := range results[i] {
			label, ok := names[det.ClassIndex]
			if !ok {
				return nil, xerrors.Errorf("%s inference: unknown class index %d in %s", d.name, det.ClassIndex, frame.ID)
			}
			objects = append(objects, model.DetectedObject{
				ClassIndex: det.ClassIndex,
				ClassLabel: label,
				Confidence: float64(det.Confidence),
				Box:        det.Box,
			})
		}
		groups = append(groups, model.FrameDetections{
			Frame:   frame,
			Objects: objects,
		})
	}
	return groups, nil
}
