package config

import (
	"runtime"
	"time"
)

// GlobalConfig holds the global configuration for the application
type GlobalConfig struct {
	// Profile is the AWS profile to use
	Profile string

	// UploadRole is the role name or ARN to assume for S3 uploads
	UploadRole string

	// MaxWorkers defines the maximum number of services processed concurrently
	MaxWorkers int

	// TaskTimeout bounds the processing of a single service
	TaskTimeout time.Duration

	// LogFormat is the format for logging
	LogFormat string

	// LogLevel is the minimum level logged
	LogLevel string
}

// Config is the global configuration instance
var Config = &GlobalConfig{
	Profile:     "default",
	MaxWorkers:  min(runtime.NumCPU(), 4), // offer files are large; parsing is memory bound
	TaskTimeout: 15 * time.Minute,
	LogFormat:   "text",
	LogLevel:    "INFO",
}
