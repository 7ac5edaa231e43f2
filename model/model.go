package model

import (
	"fmt"
	"image"
	"io"
	"runtime/debug"
	"time"
)

type CustomError struct {
	Processor  string                 `json:"processor"`
	Inner      error                  `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

func (e CustomError) Error() string {
	if e.Inner == nil {
		return fmt.Sprintf("%s: %s", e.Processor, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Processor, e.Message, e.Inner)
}

func (e CustomError) Unwrap() error {
	return e.Inner
}

func GenError(proc string, err error, misc map[string]interface{}, messagef string, args ...interface{}) CustomError {
	return CustomError{
		Processor:  proc,
		Inner:      err,
		Message:    fmt.Sprintf(messagef, args...),
		StackTrace: string(debug.Stack()),
		Misc:       misc,
	}
}

// Frame is one still image sampled from a video, stream or image folder.
// Image is owned by whoever pulled the frame and must be closed by them.
type Frame struct {
	ID        string
	Index     int
	Timestamp time.Time
	Image     io.Closer
}

func (f Frame) Close() error {
	if f.Image == nil {
		return nil
	}
	return f.Image.Close()
}

type DetectedObject struct {
	ClassIndex int             `json:"classIndex"`
	ClassLabel string          `json:"classLabel"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// FrameDetections is the group of objects the model found in one frame.
type FrameDetections struct {
	Frame   Frame
	Objects []DetectedObject
}

// Descriptor identifies the detection that first claimed a confidence value.
type Descriptor struct {
	FrameID    string
	ClassLabel string
	FrameIndex int
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s_%s_%d", d.FrameID, d.ClassLabel, d.FrameIndex)
}

// FrameAggregate holds per-class counts and a confidence index for one frame of one pass.
// Objects sharing a confidence value collapse to a single index entry but are all counted.
type FrameAggregate struct {
	Counts          map[string]int
	ConfidenceIndex map[float64]Descriptor
}

func (a FrameAggregate) Total() int {
	total := 0
	for _, c := range a.Counts {
		total += c
	}
	return total
}

// RunResult is the ordered list of aggregates produced by one pass over a run.
type RunResult []FrameAggregate

func (r RunResult) Counts() []map[string]int {
	counts := make([]map[string]int, 0, len(r))
	for _, agg := range r {
		counts = append(counts, agg.Counts)
	}
	return counts
}

// Record is either a GrowthState or a DiseaseEvent.
type Record interface {
	Kind() string
	isRecord()
}

const (
	GrowthKind  = "growth"
	DiseaseKind = "disease"
)

type GrowthState struct {
	Date              time.Time `json:"date"`
	Area              string    `json:"area"`
	GreenCount        int       `json:"greenCount"`
	HalfRipenedCount  int       `json:"halfRipenedCount"`
	FullyRipenedCount int       `json:"fullyRipenedCount"`
}

func (GrowthState) Kind() string { return GrowthKind }
func (GrowthState) isRecord()    {}

type DiseaseEvent struct {
	Date    time.Time `json:"date"`
	Area    string    `json:"area"`
	Illness string    `json:"illness"`
	Count   int       `json:"illCount"`
}

func (DiseaseEvent) Kind() string { return DiseaseKind }
func (DiseaseEvent) isRecord()    {}

type NextReadyEstimate struct {
	Count int       `json:"count"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

func (e NextReadyEstimate) Message() string {
	return fmt.Sprintf("%d tomatoes are estimated to be ready in 5 to 7 days (between %s and %s)",
		e.Count, e.From.Format(time.DateOnly), e.To.Format(time.DateOnly))
}

type SchedulerStats struct {
	Name       string `json:"name"`
	Source     string `json:"source"`
	Pulled     int    `json:"pulled"`
	Processed  int    `json:"processed"`
	Discarded  int    `json:"discarded"`
	StopReason string `json:"stopReason"`
	Uptime     int64  `json:"uptime"`
	Timestamp  int64  `json:"timestamp"`
}
