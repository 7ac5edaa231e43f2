package chart

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestPlotRenderWritesPNG(t *testing.T) {
	dir := t.TempDir()
	svc := NewPlot()

	err := svc.Render(map[string]int{"l_half_ripened": 4, "l_green": 9, "b_half_ripened": 2}, "3_size_frame3.jpg", dir)
	test.That(t, err, test.ShouldBeNil)

	info, err := os.Stat(filepath.Join(dir, "charts", "3_size_frame3.jpg.png"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}

func TestPlotRenderWithoutDestination(t *testing.T) {
	err := NewPlot().Render(map[string]int{"l_green": 1}, "x", "")
	test.That(t, err, test.ShouldBeNil)
}

func TestPlotRenderEmptyCountsRandomName(t *testing.T) {
	dir := t.TempDir()
	test.That(t, NewPlot().Render(map[string]int{}, "", dir), test.ShouldBeNil)

	entries, err := os.ReadDir(filepath.Join(dir, "charts"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, filepath.Ext(entries[0].Name()), test.ShouldEqual, ".png")
}

func TestFileName(t *testing.T) {
	test.That(t, fileName("chart.PNG"), test.ShouldEqual, "chart.PNG")
	test.That(t, fileName("a"), test.ShouldEqual, "a.png")
	test.That(t, fileName(""), test.ShouldHaveLength, 14)
}
