package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// Output destinations
const (
	OutputFileSystem = "filesystem"
	OutputS3         = "s3"
	OutputPostgres   = "postgres"
)

// RunConfig holds the settings of a price list run
type RunConfig struct {
	Services      []string
	IncludeEC2    bool
	Format        string
	Delimiter     rune
	Output        string
	OutputFormat  string
	OutputDir     string
	Bucket        string
	BucketRegion  string
	Compress      bool
	SNSTopic      string
	CacheDir      string
	OfferURL      string
	MetricsFile   string
	PostgresDSN   string
	PostgresTable string
	MaxWorkers    int
	TaskTimeout   time.Duration
	UploadRole    string
}

// LoadRunConfig reads and validates the run settings from v
func LoadRunConfig(v *viper.Viper) (*RunConfig, error) {
	rc := &RunConfig{
		Services:      splitList(v.GetStringSlice("run.services")),
		IncludeEC2:    v.GetBool("run.include_ec2"),
		Format:        strings.ToLower(strings.TrimSpace(v.GetString("run.format"))),
		Output:        strings.ToLower(strings.TrimSpace(v.GetString("run.output"))),
		OutputFormat:  strings.ToLower(strings.TrimSpace(v.GetString("run.output_format"))),
		OutputDir:     v.GetString("run.output_dir"),
		Bucket:        v.GetString("run.bucket"),
		BucketRegion:  v.GetString("run.bucket_region"),
		Compress:      v.GetBool("run.compress"),
		SNSTopic:      v.GetString("run.sns_topic"),
		CacheDir:      v.GetString("run.cache_dir"),
		OfferURL:      v.GetString("run.offer_url"),
		MetricsFile:   v.GetString("run.metrics_file"),
		PostgresDSN:   v.GetString("run.postgres_dsn"),
		PostgresTable: v.GetString("run.postgres_table"),
		MaxWorkers:    v.GetInt("app.max_workers"),
		TaskTimeout:   v.GetDuration("app.task_timeout"),
		UploadRole:    v.GetString("aws.upload_role"),
	}

	if rc.Format == "" {
		rc.Format = "csv"
	}
	switch rc.Format {
	case "csv", "json":
	default:
		return nil, fmt.Errorf("invalid price list format: %s", rc.Format)
	}

	switch rc.OutputFormat {
	case "csv", "json":
	default:
		return nil, fmt.Errorf("invalid output format: %s", rc.OutputFormat)
	}

	delim, err := ParseDelimiter(v.GetString("run.delimiter"))
	if err != nil {
		return nil, err
	}
	rc.Delimiter = delim

	switch rc.Output {
	case OutputFileSystem:
	case OutputS3:
		if rc.Bucket == "" {
			return nil, fmt.Errorf("--bucket is required when --output=s3")
		}
	case OutputPostgres:
		if rc.PostgresDSN == "" {
			return nil, fmt.Errorf("--postgres-dsn is required when --output=postgres")
		}
		if rc.PostgresTable == "" {
			return nil, fmt.Errorf("--postgres-table must not be empty")
		}
	default:
		return nil, fmt.Errorf("invalid output type: %s", rc.Output)
	}

	if rc.MaxWorkers <= 0 {
		return nil, fmt.Errorf("max workers must be greater than 0, got %d", rc.MaxWorkers)
	}
	if rc.TaskTimeout <= 0 {
		return nil, fmt.Errorf("task timeout must be positive")
	}
	if !strings.Contains(rc.OfferURL, "%s") {
		return nil, fmt.Errorf("offer url must contain %%s placeholders for service and format")
	}

	return rc, nil
}

// ParseDelimiter accepts a single character, or the escape "\t" for tab.
// An empty value falls back to "|".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return '|', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// splitList flattens comma-separated entries, which is how env vars and flags supply lists
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
