package pipeline

import (
	"fmt"
	"testing"

	"github.com/benbjohnson/clock"
	"go.uber.org/goleak"
	"go.viam.com/test"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/data"
	"github.com/khaledhikmat/vs-tomato/service/notify"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testDiseaseClasses = "Healthy:healthy,Early_Blight:illness,Late_Blight:illness"

var (
	diseaseNames = map[int]string{0: "Healthy", 1: "Early_Blight", 2: "Late_Blight"}
	sizeNames    = map[int]string{
		0: "l_green",
		1: "b_green",
		2: "l_half_ripened",
		3: "b_half_ripened",
		4: "l_fully_ripened",
		5: "b_fully_ripened",
	}
)

func mustTaxonomy(t *testing.T, name, mapping string) Taxonomy {
	t.Helper()
	tx, err := ParseTaxonomy(name, mapping)
	test.That(t, err, test.ShouldBeNil)
	return tx
}

func diseaseTaxonomy(t *testing.T) Taxonomy {
	return mustTaxonomy(t, "disease", testDiseaseClasses)
}

func sizeTaxonomy(t *testing.T) Taxonomy {
	return mustTaxonomy(t, "size", config.DefaultSizeClasses)
}

func obj(label string, conf float64) model.DetectedObject {
	return model.DetectedObject{ClassLabel: label, Confidence: conf}
}

func frameGroup(index int, objs ...model.DetectedObject) model.FrameDetections {
	return model.FrameDetections{
		Frame:   model.Frame{ID: fmt.Sprintf("image%d.jpg", index), Index: index},
		Objects: objs,
	}
}

func runOf(groups ...model.FrameDetections) model.RunResult {
	run := model.RunResult{}
	for _, g := range groups {
		run = append(run, Aggregate(g))
	}
	return run
}

// greens returns n green detections with distinct confidences below 0.2.
func greens(n int) []model.DetectedObject {
	objs := []model.DetectedObject{}
	for i := 1; i <= n; i++ {
		objs = append(objs, obj("l_green", float64(i)/100))
	}
	return objs
}

type testSinks struct {
	data   *data.MemoryService
	notify *notify.FakeService
	clk    *clock.Mock
}

func newTestUpdate(area string) (*Update, testSinks) {
	sinks := testSinks{
		data:   data.NewMemory(),
		notify: notify.NewFake(),
		clk:    clock.NewMock(),
	}
	return NewUpdate(NewSink(sinks.data, sinks.notify), sinks.clk, area), sinks
}

type recordingChart struct {
	labels       []string
	destinations []string
}

func (c *recordingChart) Render(_ map[string]int, label string, destination string) error {
	c.labels = append(c.labels, label)
	c.destinations = append(c.destinations, destination)
	return nil
}
