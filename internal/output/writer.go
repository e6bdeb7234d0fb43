package output

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/schollz/progressbar/v3"

	awsutil "riprice/internal/aws"
	"riprice/internal/aws/pricing/models"
	"riprice/internal/logging"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelay        = 2 * time.Second
	defaultPartSize          = 5 * 1024 * 1024 // 5MB
	defaultConcurrentUploads = 5
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// UploadConfig holds upload configuration
type UploadConfig struct {
	PartSize        int64
	ConcurrentParts int
}

// Type represents the output type
type Type string

const (
	// FileSystem represents local filesystem output
	FileSystem Type = "filesystem"
	// S3 represents S3 bucket output
	S3 Type = "s3"
)

// Config holds output configuration
type Config struct {
	Type      Type
	OutputDir string
	S3Bucket  string
	Format    Format
	Delimiter rune
	Compress  bool
	// RunID is stored as object metadata
	RunID        string
	Retry        *RetryConfig
	ShowProgress bool
}

// Writer writes one output file per service to the filesystem or an S3 bucket
type Writer struct {
	config   Config
	uploader s3manageriface.UploaderAPI
}

// NewWriter creates a new output writer with default settings. The uploader is
// only used, and required, for S3 output.
func NewWriter(config Config, uploader s3manageriface.UploaderAPI) (*Writer, error) {
	if config.Retry == nil {
		config.Retry = &RetryConfig{
			MaxRetries: defaultMaxRetries,
			RetryDelay: defaultRetryDelay,
		}
	}
	if config.Format == "" {
		config.Format = FormatCSV
	}
	if config.Delimiter == 0 {
		config.Delimiter = '|'
	}

	switch config.Type {
	case FileSystem:
		if config.OutputDir == "" {
			config.OutputDir = "output"
		}
	case S3:
		if config.S3Bucket == "" {
			return nil, fmt.Errorf("S3 bucket not specified")
		}
		if uploader == nil {
			return nil, fmt.Errorf("S3 output requires an uploader")
		}
	default:
		return nil, fmt.Errorf("unsupported output type: %s", config.Type)
	}

	return &Writer{config: config, uploader: uploader}, nil
}

// NewS3Uploader creates an uploader for the given profile and bucket region,
// assuming role first when it is set
func NewS3Uploader(profile, region, role string, upload *UploadConfig) (s3manageriface.UploaderAPI, error) {
	if upload == nil {
		upload = &UploadConfig{
			PartSize:        defaultPartSize,
			ConcurrentParts: defaultConcurrentUploads,
		}
	}

	sess, err := awsutil.NewSession(profile, region)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	sess, err = awsutil.AssumeRole(sess, role)
	if err != nil {
		return nil, fmt.Errorf("failed to assume upload role: %w", err)
	}

	return s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.PartSize = upload.PartSize
		u.Concurrency = upload.ConcurrentParts
	}), nil
}

// FileName returns the object key or file name for a service, e.g. AmazonRDS.csv
func (w *Writer) FileName(service string) string {
	name := service + "." + string(w.config.Format)
	if w.config.Compress {
		name += ".gz"
	}
	return name
}

// compressData compresses the input data using gzip
func (w *Writer) compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write to gzip writer: %w", err)
	}

	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Write renders the terms of a service and stores them; it returns the file path or S3 URI
func (w *Writer) Write(ctx context.Context, service string, terms []models.ComparisonTerm) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, terms, w.config.Format, w.config.Delimiter); err != nil {
		return "", err
	}

	data := buf.Bytes()
	if w.config.Compress {
		compressed, err := w.compressData(data)
		if err != nil {
			return "", fmt.Errorf("failed to compress data: %w", err)
		}
		data = compressed
	}

	name := w.FileName(service)
	switch w.config.Type {
	case FileSystem:
		path := filepath.Join(w.config.OutputDir, name)
		return path, w.writeToFileSystem(path, data)
	case S3:
		return fmt.Sprintf("s3://%s/%s", w.config.S3Bucket, name), w.writeToS3WithRetry(ctx, name, data)
	default:
		return "", fmt.Errorf("unsupported output type: %s", w.config.Type)
	}
}

// writeToFileSystem writes data to the local filesystem
func (w *Writer) writeToFileSystem(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// writeToS3WithRetry writes data to the S3 bucket with retry logic
func (w *Writer) writeToS3WithRetry(ctx context.Context, key string, data []byte) error {
	var lastErr error
	for attempt := 0; attempt < w.config.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Warn("Retrying S3 upload", map[string]interface{}{
				"key":     key,
				"attempt": attempt + 1,
				"error":   lastErr.Error(),
			})
			select {
			case <-ctx.Done():
				return fmt.Errorf("S3 upload cancelled: %w", ctx.Err())
			case <-time.After(w.config.Retry.RetryDelay):
			}
		}

		if err := w.writeToS3(ctx, key, data); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to upload to S3 after %d attempts: %w",
		w.config.Retry.MaxRetries, lastErr)
}

// writeToS3 uploads data with progress tracking
func (w *Writer) writeToS3(ctx context.Context, key string, data []byte) error {
	var body io.Reader = bytes.NewReader(data)
	if w.config.ShowProgress {
		body = &progressReader{
			reader: body,
			bar: progressbar.NewOptions64(
				int64(len(data)),
				progressbar.OptionSetDescription("Uploading "+key),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(15),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowCount(),
			),
		}
	}

	input := &s3manager.UploadInput{
		Bucket:               aws.String(w.config.S3Bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentType:          aws.String(w.contentType()),
		ServerSideEncryption: aws.String("aws:kms"),
	}
	if w.config.Compress {
		input.ContentEncoding = aws.String("gzip")
	}
	if w.config.RunID != "" {
		input.Metadata = map[string]*string{"run-id": aws.String(w.config.RunID)}
	}

	if _, err := w.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func (w *Writer) contentType() string {
	if w.config.Format == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// progressReader wraps an io.Reader to track progress
type progressReader struct {
	reader io.Reader
	bar    *progressbar.ProgressBar
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if barErr := r.bar.Add(n); barErr != nil {
		logging.Debug("Error updating progress bar", map[string]interface{}{"error": barErr.Error()})
	}
	return n, err
}
