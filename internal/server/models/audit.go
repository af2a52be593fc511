package models

import "time"

// LogLevel is the severity of an audit record.
type LogLevel string

const (
	LevelTrace LogLevel = "TRACE"
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
	LevelFatal LogLevel = "FATAL"
)

// AuditRecord is an append-only application log entry.
type AuditRecord struct {
	ID        int64
	Level     LogLevel
	Message   string
	RequestID string
	Timestamp time.Time
	Component string
}

// IntegrationRecord pairs one inbound request with the response sent back.
type IntegrationRecord struct {
	ID           int64
	RequestID    string
	ResponseID   string
	RequestTime  time.Time
	ResponseTime time.Time
	StatusCode   int
	RequestData  string
	ResponseData string
}
