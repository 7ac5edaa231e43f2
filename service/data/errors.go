package data

import (
	"fmt"
	"time"

	"github.com/khaledhikmat/vs-tomato/model"
)

type errorData struct {
	Timestamp  int64                  `json:"timestamp"`
	Processor  string                 `json:"processor"`
	Inner      string                 `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

func toErrorData(err interface{}) errorData {
	// Determine if the error is custom
	var customErr model.CustomError
	switch e := err.(type) {
	case model.CustomError:
		customErr = e
	case error:
		customErr.Processor = "N/A"
		customErr.Inner = e
		customErr.Message = e.Error()
		customErr.StackTrace = "N/A"
	default:
		customErr.Processor = "N/A"
		customErr.Message = fmt.Sprintf("%v", e)
		customErr.StackTrace = "N/A"
	}

	inner := ""
	if customErr.Inner != nil {
		inner = customErr.Inner.Error()
	}

	return errorData{
		Timestamp:  time.Now().Unix(),
		Processor:  customErr.Processor,
		Inner:      inner,
		Message:    customErr.Message,
		StackTrace: customErr.StackTrace,
		Misc:       customErr.Misc,
	}
}
