package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/annotate"
	"github.com/khaledhikmat/vs-tomato/service/chart"
	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/data"
	"github.com/khaledhikmat/vs-tomato/service/inference"
	"github.com/khaledhikmat/vs-tomato/service/notify"
	"github.com/khaledhikmat/vs-tomato/service/remote"
)

type processorFixture struct {
	proc    *Processor
	data    *data.MemoryService
	notify  *notify.FakeService
	disease *inference.FakeService
	size    *inference.FakeService
}

func detections(label map[int]string, confs map[string][]float32) []inference.Detection {
	index := map[string]int{}
	for i, l := range label {
		index[l] = i
	}

	dets := []inference.Detection{}
	for l, cs := range confs {
		for _, c := range cs {
			dets = append(dets, inference.Detection{ClassIndex: index[l], Confidence: c})
		}
	}
	return dets
}

func newProcessorFixture(t *testing.T, vals map[string]string, diseaseFn, sizeFn inference.FakeFunc) processorFixture {
	t.Helper()

	fx := processorFixture{
		data:    data.NewMemory(),
		notify:  notify.NewFake(),
		disease: inference.NewFake(diseaseNames, diseaseFn),
		size:    inference.NewFake(sizeNames, sizeFn),
	}

	svcs := ServicesFactory{
		CfgSvc:      config.NewMap(vals),
		DataSvc:     fx.data,
		NotifySvc:   fx.notify,
		RemoteSvc:   remote.NewFake(),
		ChartSvc:    chart.NewNoop(),
		AnnotateSvc: annotate.NewFake(),
		SizeSvc:     fx.size,
		DiseaseSvc:  fx.disease,
		Clock:       clock.NewMock(),
	}

	disease, err := NewDetector("disease", fx.disease, diseaseTaxonomy(t))
	test.That(t, err, test.ShouldBeNil)
	size, err := NewDetector("size", fx.size, sizeTaxonomy(t))
	test.That(t, err, test.ShouldBeNil)

	fx.proc = NewProcessor(svcs, disease, size)
	return fx
}

func TestProcessStopsOnDisease(t *testing.T) {
	fx := newProcessorFixture(t, nil,
		func(model.Frame) ([]inference.Detection, error) {
			return detections(diseaseNames, map[string][]float32{"Early_Blight": {0.9}}), nil
		},
		func(model.Frame) ([]inference.Detection, error) {
			return detections(sizeNames, map[string][]float32{"l_green": {0.5}}), nil
		},
	)

	outcome, err := fx.proc.Process(context.Background(), []model.Frame{{ID: "image0.jpg"}}, "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcome, test.ShouldEqual, DiseaseDetected)
	test.That(t, fx.size.Calls(), test.ShouldEqual, 0)
	test.That(t, fx.notify.Messages(), test.ShouldResemble, []string{"Disease is detected!"})
	test.That(t, fx.data.DiseaseEvents(), test.ShouldHaveLength, 1)
	test.That(t, fx.data.GrowthStates(), test.ShouldBeEmpty)
}

func TestProcessHealthyFrame(t *testing.T) {
	greenConfs := []float32{}
	for i := 1; i <= 11; i++ {
		greenConfs = append(greenConfs, float32(i)/100)
	}

	fx := newProcessorFixture(t, map[string]string{"AREA": "greenhouse-2"},
		func(model.Frame) ([]inference.Detection, error) {
			return detections(diseaseNames, map[string][]float32{"Healthy": {0.95}}), nil
		},
		func(model.Frame) ([]inference.Detection, error) {
			return detections(sizeNames, map[string][]float32{
				"l_green":         greenConfs,
				"l_half_ripened":  {0.5, 0.6},
				"l_fully_ripened": {0.9},
			}), nil
		},
	)

	outcome, err := fx.proc.Process(context.Background(), []model.Frame{{ID: "image0.jpg"}}, "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcome, test.ShouldEqual, FrameProcessed)
	test.That(t, fx.notify.Messages(), test.ShouldResemble, []string{"There are 1 ready tomatoes to be harvested!"})
	test.That(t, fx.data.DiseaseEvents(), test.ShouldBeEmpty)

	states := fx.data.GrowthStates()
	test.That(t, states, test.ShouldHaveLength, 1)
	test.That(t, states[0].Area, test.ShouldEqual, "greenhouse-2")
	test.That(t, states[0].GreenCount, test.ShouldEqual, 11)
	test.That(t, states[0].HalfRipenedCount, test.ShouldEqual, 2)
	test.That(t, states[0].FullyRipenedCount, test.ShouldEqual, 1)
}

func TestProcessWithoutHarvest(t *testing.T) {
	fx := newProcessorFixture(t, nil, nil,
		func(model.Frame) ([]inference.Detection, error) {
			return detections(sizeNames, map[string][]float32{"l_fully_ripened": {0.9}}), nil
		},
	)

	outcome, err := fx.proc.Process(context.Background(), []model.Frame{{ID: "image0.jpg"}}, "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcome, test.ShouldEqual, FrameProcessed)
	test.That(t, fx.notify.Messages(), test.ShouldBeEmpty)
	test.That(t, fx.data.GrowthStates(), test.ShouldHaveLength, 1)
}

func TestProcessInferenceFailure(t *testing.T) {
	boom := errors.New("model crashed")
	fx := newProcessorFixture(t, nil, nil, func(model.Frame) ([]inference.Detection, error) {
		return nil, boom
	})

	_, err := fx.proc.Process(context.Background(), []model.Frame{{ID: "image0.jpg"}}, "0")
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
	test.That(t, fx.data.GrowthStates(), test.ShouldBeEmpty)
}

func TestProcessNamesArtifactsByPass(t *testing.T) {
	dir := t.TempDir()
	fx := newProcessorFixture(t, map[string]string{"SAVE_IMAGES": "true", "OUTPUT": dir}, nil, nil)

	_, err := fx.proc.Process(context.Background(), []model.Frame{{ID: "image4.jpg", Index: 4}}, "4")
	test.That(t, err, test.ShouldBeNil)

	for _, name := range []string{"4_disease_image4.jpg", "4_size_image4.jpg"} {
		_, err := os.Stat(filepath.Join(dir, name))
		test.That(t, err, test.ShouldBeNil)
	}
}

func TestProcessRecordsDiseaseWhenCancelledMidFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "tomato.db")
	dataSvc, err := data.NewSQLite(path)
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { dataSvc.Close() })

	// The signal arrives while the disease model is still running.
	diseaseSvc := inference.NewFake(diseaseNames, func(model.Frame) ([]inference.Detection, error) {
		cancel()
		return detections(diseaseNames, map[string][]float32{"Early_Blight": {0.9}}), nil
	})
	notifySvc := notify.NewFake()

	disease, err := NewDetector("disease", diseaseSvc, diseaseTaxonomy(t))
	test.That(t, err, test.ShouldBeNil)
	size, err := NewDetector("size", inference.NewFake(sizeNames, nil), sizeTaxonomy(t))
	test.That(t, err, test.ShouldBeNil)

	proc := NewProcessor(ServicesFactory{
		CfgSvc:      config.NewMap(map[string]string{"AREA": "greenhouse-3"}),
		DataSvc:     dataSvc,
		NotifySvc:   notifySvc,
		RemoteSvc:   remote.NewFake(),
		ChartSvc:    chart.NewNoop(),
		AnnotateSvc: annotate.NewFake(),
		Clock:       clock.NewMock(),
	}, disease, size)

	outcome, err := proc.Process(ctx, []model.Frame{{ID: "image0.jpg"}}, "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcome, test.ShouldEqual, DiseaseDetected)
	test.That(t, ctx.Err(), test.ShouldNotBeNil)
	test.That(t, notifySvc.Messages(), test.ShouldResemble, []string{"Disease is detected!"})

	db, err := sql.Open("sqlite", path)
	test.That(t, err, test.ShouldBeNil)
	defer db.Close()

	var (
		area, illness string
		count         int
	)
	err = db.QueryRow("SELECT area, illness, ill_count FROM disease").Scan(&area, &illness, &count)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, area, test.ShouldEqual, "greenhouse-3")
	test.That(t, illness, test.ShouldEqual, "Early_Blight")
	test.That(t, count, test.ShouldEqual, 1)
}
