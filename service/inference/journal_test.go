package inference

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/khaledhikmat/vs-tomato/model"
)

func TestJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "size_detections.log")
	j := NewJournal("size", path, map[int]string{0: "l_green", 1: "l_fully_ripened"})

	j.Log(model.Frame{ID: "frame1.jpg", Index: 1}, nil)
	j.Log(model.Frame{ID: "frame2.jpg", Index: 2}, []Detection{
		{ClassIndex: 1, Confidence: 0.5, Box: image.Rect(0, 0, 10, 10)},
	})
	test.That(t, j.Close(), test.ShouldBeNil)

	b, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 1)

	var entry struct {
		Model      string       `json:"model"`
		Frame      string       `json:"frame"`
		Detections []journalRow `json:"detections"`
	}
	test.That(t, json.Unmarshal([]byte(lines[0]), &entry), test.ShouldBeNil)
	test.That(t, entry.Model, test.ShouldEqual, "size")
	test.That(t, entry.Frame, test.ShouldEqual, "frame2.jpg")
	test.That(t, entry.Detections, test.ShouldResemble, []journalRow{
		{Label: "l_fully_ripened", Confidence: 0.5, Box: "(0,0)-(10,10)"},
	})
}
