package inference

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/natefinch/lumberjack"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

// Journal appends one JSON line per frame with detections to a rotating file.
type Journal struct {
	model  string
	labels map[int]string
	out    *lumberjack.Logger
}

type journalRow struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Box        string  `json:"box"`
}

func NewJournal(modelName, fileName string, labels map[int]string) *Journal {
	return &Journal{
		model:  modelName,
		labels: labels,
		out: &lumberjack.Logger{
			Filename:   fileName,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     7,    // days
			Compress:   true, // compress old logs
		},
	}
}

func (j *Journal) FileName() string {
	return j.out.Filename
}

func (j *Journal) Log(frame model.Frame, dets []Detection) {
	if len(dets) == 0 {
		return
	}

	rows := make([]journalRow, 0, len(dets))
	for _, d := range dets {
		rows = append(rows, journalRow{
			Label:      j.labels[d.ClassIndex],
			Confidence: d.Confidence,
			Box:        d.Box.String(),
		})
	}

	entry := map[string]interface{}{
		"time":       time.Now().Format(time.RFC3339),
		"model":      j.model,
		"frame":      frame.ID,
		"index":      frame.Index,
		"detections": rows,
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		lgr.Logger.Warn("marshaling detections failed", lgr.Err(err))
		return
	}

	if _, err := j.out.Write(append(jsonData, '\n')); err != nil {
		lgr.Logger.Warn("writing detection journal failed", slog.String("file", j.out.Filename), lgr.Err(err))
	}
}

func (j *Journal) Close() error {
	return j.out.Close()
}
