package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

const (
	DefaultSizeClasses = "l_green:green,b_green:green," +
		"l_half_ripened:half_ripened,b_half_ripened:half_ripened," +
		"l_fully_ripened:fully_ripened,b_fully_ripened:fully_ripened"

	DefaultDiseaseClasses = "Healthy:healthy,Bacterial_Spot:illness,Early_Blight:illness," +
		"Late_Blight:illness,Leaf_Mold:illness,Septoria_Leaf_Spot:illness,Spider_Mites:illness," +
		"Target_Spot:illness,Mosaic_Virus:illness,Yellow_Leaf_Curl_Virus:illness"
)

type envService struct {
	lookup func(string) (string, bool)
}

// NewEnv reads every option from the environment, falling back to defaults for
// missing or unparsable values.
func NewEnv() IService {
	return &envService{
		lookup: os.LookupEnv,
	}
}

func (svc *envService) GetModeMaxShutdownTime() int {
	return svc.integer("MODE_MAX_SHUTDOWN_TIME", 5)
}

func (svc *envService) GetLogFile() string {
	return svc.str("LOG_FILE", "tomato.log")
}

func (svc *envService) GetLogLevel() string {
	return svc.str("LOG_LEVEL", "info")
}

func (svc *envService) GetSource() string {
	return svc.str("SOURCE", "0")
}

func (svc *envService) GetInputFolder() string {
	return svc.str("INPUT", "test_inputs/")
}

func (svc *envService) GetOutputFolder() string {
	return svc.str("OUTPUT", "test_results/")
}

func (svc *envService) GetDataFolder() string {
	return svc.str("DATA_FOLDER", "./data")
}

func (svc *envService) GetArea() string {
	return svc.str("AREA", "unidentified")
}

func (svc *envService) GetSizeModel() string {
	return svc.str("SIZE_MODEL", "size.onnx")
}

func (svc *envService) GetSizeLabels() string {
	return svc.str("SIZE_LABELS", "size.names")
}

func (svc *envService) GetSizeClasses() string {
	return svc.str("SIZE_CLASSES", DefaultSizeClasses)
}

func (svc *envService) GetSizeConfidence() float64 {
	return svc.float("SIZE_CONFIDENCE", 0.8)
}

func (svc *envService) GetSizeRipenedCount() int {
	return svc.integer("SIZE_RIPENED_COUNT", 10)
}

func (svc *envService) GetDiseaseModel() string {
	return svc.str("DISEASE_MODEL", "disease.onnx")
}

func (svc *envService) GetDiseaseLabels() string {
	return svc.str("DISEASE_LABELS", "disease.names")
}

func (svc *envService) GetDiseaseClasses() string {
	return svc.str("DISEASE_CLASSES", DefaultDiseaseClasses)
}

func (svc *envService) GetDiseaseConfidence() float64 {
	return svc.float("DISEASE_CONFIDENCE", 0.8)
}

func (svc *envService) GetDetectorParameters() DetectorParameters {
	return DetectorParameters{
		ObjectConfidenceThreshold: float32(svc.float("OBJECT_CONFIDENCE", 0.25)),
		NMSThreshold:              float32(svc.float("NMS_THRESHOLD", 0.45)),
		InputSize:                 svc.integer("INPUT_SIZE", 640),
		Logging:                   svc.boolean("DETECTION_LOG", false),
		JournalFolder:             svc.str("DETECTION_LOG_FOLDER", filepath.Dir(svc.GetLogFile())),
	}
}

// GetSamplingInterval is COOLDOWN expressed in minutes, converted with COOLDOWN_MULTIPLIER
// seconds per unit.
func (svc *envService) GetSamplingInterval() time.Duration {
	cooldown := svc.float("COOLDOWN", 5)
	multiplier := svc.float("COOLDOWN_MULTIPLIER", 60)
	return time.Duration(cooldown * multiplier * float64(time.Second))
}

func (svc *envService) IsShowStream() bool {
	return svc.boolean("SHOW_STREAM", false)
}

func (svc *envService) IsSaveImages() bool {
	return svc.boolean("SAVE_IMAGES", false)
}

func (svc *envService) IsChartSave() bool {
	return svc.boolean("CHART_SAVE", false)
}

func (svc *envService) GetDatabaseDriver() string {
	return strings.ToLower(svc.str("DB_DRIVER", "sqlite"))
}

func (svc *envService) GetDatabasePath() string {
	return svc.str("DB_PATH", "tomato.db")
}

func (svc *envService) IsFTPEnabled() bool {
	return svc.boolean("USE_FTP", false)
}

func (svc *envService) GetFTPParameters() FTPParameters {
	return FTPParameters{
		Server:   svc.str("FTP_SERVER", "localhost"),
		Port:     svc.integer("FTP_PORT", 21),
		User:     svc.str("FTP_USER", "anonymous"),
		Password: svc.str("FTP_PASSWORD", ""),
	}
}

func (svc *envService) IsEmailEnabled() bool {
	return svc.boolean("USE_EMAIL", false)
}

func (svc *envService) GetEmailParameters() EmailParameters {
	return EmailParameters{
		SMTPServer: svc.str("SMTP_SERVER", "smtp.gmail.com"),
		Port:       svc.integer("SMTP_PORT", 25),
		Sender:     svc.str("EMAIL_SENDER", "me@gmail.com"),
		Receiver:   svc.str("EMAIL_RECEIVER", "you@gmail.com"),
		Password:   svc.str("EMAIL_PASSWORD", ""),
		Subject:    svc.str("EMAIL_SUBJECT", "TOMATO"),
	}
}

func (svc *envService) str(key, fallback string) string {
	if v, ok := svc.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (svc *envService) integer(key string, fallback int) int {
	v, ok := svc.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	n, err := cast.ToIntE(strings.TrimSpace(v))
	if err != nil {
		invalid(key, v, err)
		return fallback
	}
	return n
}

func (svc *envService) float(key string, fallback float64) float64 {
	v, ok := svc.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(v))
	if err != nil {
		invalid(key, v, err)
		return fallback
	}
	return f
}

func (svc *envService) boolean(key string, fallback bool) bool {
	v, ok := svc.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	b, err := cast.ToBoolE(strings.TrimSpace(v))
	if err != nil {
		invalid(key, v, err)
		return fallback
	}
	return b
}

func invalid(key, value string, err error) {
	lgr.Logger.Warn(
		"invalid config value, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.Any("error", err),
	)
}
