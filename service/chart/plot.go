package chart

import (
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

const subfolder = "charts"

var skyBlue = color.RGBA{R: 135, G: 206, B: 235, A: 255}

type plotService struct {
}

// NewPlot renders bar charts as PNG files under <destination>/charts.
func NewPlot() IService {
	return &plotService{}
}

func (svc *plotService) Render(counts map[string]int, label string, destination string) error {
	if destination == "" {
		return nil
	}

	categories := make([]string, 0, len(counts))
	for k := range counts {
		categories = append(categories, k)
	}
	sort.Strings(categories)

	values := make(plotter.Values, 0, len(categories))
	for _, c := range categories {
		values = append(values, float64(counts[c]))
	}

	p := plot.New()
	p.Title.Text = "Tomato Ripeness Distribution"
	if label != "" {
		p.Title.Text += " in " + label
	}
	p.X.Label.Text = "Tomato Sizes"
	p.Y.Label.Text = "Counts"
	p.X.Tick.Label.Rotation = math.Pi / 4

	if len(values) > 0 {
		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return xerrors.Errorf("building bar chart: %w", err)
		}
		bars.Color = skyBlue
		bars.LineStyle.Color = color.Black
		p.Add(bars)
		p.NominalX(categories...)
	}

	folder := filepath.Join(destination, subfolder)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return xerrors.Errorf("creating chart folder: %w", err)
	}

	path := filepath.Join(folder, fileName(label))
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return xerrors.Errorf("saving chart %s: %w", path, err)
	}

	lgr.Logger.Info("chart saved", slog.String("path", path))
	return nil
}

func fileName(label string) string {
	name := label
	if name == "" {
		name = strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	}
	if strings.ToLower(filepath.Ext(name)) != ".png" {
		name += ".png"
	}
	return name
}
