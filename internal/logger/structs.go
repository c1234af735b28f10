package logger

import (
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
)

// Console implements a console based logger.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool
}

// LogFile implements a file based logger.
type LogFile struct {
	// Legacy non docker env file logging.
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	ErrorLog        string `toml:"error"`
	ErrorMaxSize    int    `toml:"errorMaxSize"`
	ErrorMaxBackups int    `toml:"errorMaxBackups"`
	ErrorMaxAge     int    `toml:"errorMaxAge"`

	InfoLog        string `toml:"info"`
	InfoMaxSize    int    `toml:"infoMaxSize"`
	InfoMaxBackups int    `toml:"infoMaxBackups"`
	InfoMaxAge     int    `toml:"infoMaxAge"`

	TraceLog        string `toml:"trace"`
	TraceMaxSize    int    `toml:"traceMaxSize"`
	TraceMaxBackups int    `toml:"traceMaxBackups"`
	TraceMaxAge     int    `toml:"traceMaxAge"`

	WarnLog        string `toml:"warn"`
	WarnMaxSize    int    `toml:"warnMaxSize"`
	WarnMaxBackups int    `toml:"warnMaxBackups"`
	WarnMaxAge     int    `toml:"warnMaxAge"`

	AccessLog        string `toml:"access"`
	AccessMaxSize    int    `toml:"accessMaxSize"`
	AccessMaxBackups int    `toml:"accessMaxBackups"`
	AccessMaxAge     int    `toml:"accessMaxAge"`
}

// DataDog implements a datadog log forwarding config.
type DataDog struct {
	ServiceName string                       `toml:"serviceName"`
	APIKey      string                       `toml:"apiKey"` // API Key defined at datadog
	Enabled     bool                         `toml:"enabled"`
	Site        string                       `toml:"site"` // Regional Site aka DD_SITE ("datadoghq.eu")
	SecretName  string                       `toml:"secretname"`
	Servers     datadog.ServerConfigurations `toml:"servers"`
	Timeout     time.Duration                `toml:"timeout"` // how long to wait to send a log entry to datadog.
}

// Log implements the logging configuration.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.
	LogEnv   string

	ReportCaller bool

	AppName     string
	ServiceName string

	EnableAccessLogToConsole bool // mirror access log lines to the console
	DisableCheckAlive        bool // do not log /checkalive calls

	// Console used mainly for docker and dev.
	Console Console

	// Legacy non docker env file logging.
	File LogFile `toml:"file"`

	// DataDog
	DataDog DataDog
}
