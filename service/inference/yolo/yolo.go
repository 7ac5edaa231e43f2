package yolo

import (
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/inference"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

type yoloService struct {
	name    string
	net     gocv.Net
	labels  map[int]string
	params  config.DetectorParameters
	journal *inference.Journal
}

// New loads a YOLOv5 ONNX export and its names file.
// WARNING: gocv.Net is not thread-safe, so one service must not be shared by goroutines.
func New(name, modelPath, labelsPath string, params config.DetectorParameters) (inference.IService, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, xerrors.Errorf("%s model %s: %w", name, modelPath, err)
	}

	labels, err := inference.LoadLabels(labelsPath)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, xerrors.Errorf("%s model %s: unable to read network", name, modelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, xerrors.Errorf("%s model: setting backend: %w", name, err)
	}

	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, xerrors.Errorf("%s model: setting target: %w", name, err)
	}

	if params.InputSize <= 0 {
		params.InputSize = 640
	}

	lgr.Logger.Info("yolo detector loaded",
		slog.String("name", name),
		slog.String("model", modelPath),
		slog.Int("classes", len(labels)),
		slog.String("openCV", gocv.Version()),
	)

	svc := &yoloService{
		name:   name,
		net:    net,
		labels: labels,
		params: params,
	}
	if params.Logging {
		svc.journal = inference.NewJournal(name, filepath.Join(params.JournalFolder, name+"_detections.log"), labels)
	}
	return svc, nil
}

func (svc *yoloService) ClassNames() map[int]string {
	return svc.labels
}

func (svc *yoloService) Close() error {
	err := svc.net.Close()
	if svc.journal != nil {
		err = multierr.Append(err, svc.journal.Close())
	}
	return err
}

func (svc *yoloService) Infer(ctx context.Context, frames []model.Frame) ([][]inference.Detection, error) {
	results := make([][]inference.Detection, 0, len(frames))
	for _, frame := range frames {
		mat, ok := frame.Image.(*gocv.Mat)
		if !ok {
			return nil, xerrors.Errorf("%s: frame %s has unsupported image %T", svc.name, frame.ID, frame.Image)
		}

		dets, err := svc.detect(*mat)
		if err != nil {
			return nil, xerrors.Errorf("%s: frame %s: %w", svc.name, frame.ID, err)
		}

		if svc.journal != nil {
			svc.journal.Log(frame, dets)
		}

		lgr.Logger.DebugContext(ctx, "frame inferred",
			slog.String("model", svc.name),
			slog.String("frame", frame.ID),
			slog.Int("detections", len(dets)),
		)
		results = append(results, dets)
	}
	return results, nil
}

func (svc *yoloService) detect(img gocv.Mat) ([]inference.Detection, error) {
	if img.Empty() {
		return nil, xerrors.New("empty frame")
	}

	size := svc.params.InputSize
	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	svc.net.SetInput(blob, "")

	output := svc.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, xerrors.Errorf("unexpected DNN output dims: %v", dims)
	}

	reshaped := output.Reshape(1, dims[1])
	defer reshaped.Close()
	if reshaped.Empty() || reshaped.Rows() == 0 || reshaped.Cols() < 5 {
		return nil, xerrors.New("reshape failed or invalid dimensions")
	}

	xFactor := float32(img.Cols()) / float32(size)
	yFactor := float32(img.Rows()) / float32(size)

	var boxes []image.Rectangle
	var scores []float32
	var classIDs []int
	for i := 0; i < reshaped.Rows(); i++ {
		row := reshaped.RowRange(i, i+1)
		data, err := row.DataPtrFloat32()
		if err != nil || len(data) < 5 {
			row.Close()
			continue
		}

		classID, conf, box, ok := svc.decodeRow(data, xFactor, yFactor)
		row.Close()
		if !ok {
			continue
		}

		boxes = append(boxes, box)
		scores = append(scores, conf)
		classIDs = append(classIDs, classID)
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	indices := gocv.NMSBoxes(boxes, scores, svc.params.ObjectConfidenceThreshold, svc.params.NMSThreshold)
	dets := make([]inference.Detection, 0, len(indices))
	for _, idx := range indices {
		dets = append(dets, inference.Detection{
			ClassIndex: classIDs[idx],
			Confidence: scores[idx],
			Box:        boxes[idx],
		})
	}
	return dets, nil
}

// decodeRow reads one YOLOv5 output row: cx, cy, w, h, objectness, class scores...
func (svc *yoloService) decodeRow(data []float32, xFactor, yFactor float32) (int, float32, image.Rectangle, bool) {
	objectConfidence := data[4]
	if objectConfidence < svc.params.ObjectConfidenceThreshold {
		return 0, 0, image.Rectangle{}, false
	}

	classScores := data[5:]
	if len(classScores) != len(svc.labels) {
		return 0, 0, image.Rectangle{}, false
	}

	classID := -1
	classConfidence := float32(0.0)
	for j, score := range classScores {
		if score > classConfidence {
			classConfidence = score
			classID = j
		}
	}

	finalConf := objectConfidence * classConfidence
	if classID == -1 || finalConf < svc.params.ObjectConfidenceThreshold {
		return 0, 0, image.Rectangle{}, false
	}

	cx := data[0] * xFactor
	cy := data[1] * yFactor
	w := data[2] * xFactor
	h := data[3] * yFactor
	x := int(cx - w/2)
	y := int(cy - h/2)
	return classID, finalConf, image.Rect(x, y, x+int(w), y+int(h)), true
}
