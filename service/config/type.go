package config

import "time"

type DetectorParameters struct {
	ObjectConfidenceThreshold float32
	NMSThreshold              float32
	InputSize                 int
	Logging                   bool
	JournalFolder             string
}

type FTPParameters struct {
	Server   string
	Port     int
	User     string
	Password string
}

type EmailParameters struct {
	SMTPServer string
	Port       int
	Sender     string
	Receiver   string
	Password   string
	Subject    string
}

type IService interface {
	GetModeMaxShutdownTime() int
	GetLogFile() string
	GetLogLevel() string

	GetSource() string
	GetInputFolder() string
	GetOutputFolder() string
	GetDataFolder() string
	GetArea() string

	GetSizeModel() string
	GetSizeLabels() string
	GetSizeClasses() string
	GetSizeConfidence() float64
	GetSizeRipenedCount() int
	GetDiseaseModel() string
	GetDiseaseLabels() string
	GetDiseaseClasses() string
	GetDiseaseConfidence() float64
	GetDetectorParameters() DetectorParameters

	GetSamplingInterval() time.Duration
	IsShowStream() bool
	IsSaveImages() bool
	IsChartSave() bool

	GetDatabaseDriver() string
	GetDatabasePath() string

	IsFTPEnabled() bool
	GetFTPParameters() FTPParameters
	IsEmailEnabled() bool
	GetEmailParameters() EmailParameters
}
