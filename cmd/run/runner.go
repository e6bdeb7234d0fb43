package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	awsinternal "riprice/internal/aws"
	"riprice/internal/aws/pricing"
	"riprice/internal/aws/pricing/models"
	"riprice/internal/logging"
	"riprice/internal/metrics"
	"riprice/internal/worker"
)

// notifyTimeout bounds the failure notification, which runs after the task context may have expired
const notifyTimeout = 30 * time.Second

// Fetcher returns a local copy of a service's offer file
type Fetcher interface {
	Fetch(ctx context.Context, service, format string) (*awsinternal.FetchResult, error)
}

// Sink stores the comparison terms of one service and returns where they went
type Sink interface {
	Write(ctx context.Context, service string, terms []models.ComparisonTerm) (string, error)
}

// Notifier reports failed services
type Notifier interface {
	ServiceFailed(ctx context.Context, service string, cause error) error
}

// Runner processes a set of services on a worker pool
type Runner struct {
	RunID     string
	Format    pricing.Format
	Fetcher   Fetcher
	Processor *pricing.Processor
	Sink      Sink
	Notifier  Notifier
	Metrics   *metrics.Metrics
	Pool      *worker.Pool
}

// Summary is the outcome of a run
type Summary struct {
	Succeeded  []string
	Failed     map[string]error
	TotalTerms int
}

// Run processes every service and returns a summary. The returned error is
// non-nil when at least one service failed.
func (r *Runner) Run(services []string) (*Summary, error) {
	summary := &Summary{Failed: make(map[string]error)}
	var mu sync.Mutex

	tasks := make([]worker.Task, 0, len(services))
	for _, service := range services {
		service := service
		tasks = append(tasks, func(ctx context.Context) error {
			terms, err := r.processService(ctx, service)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed[service] = err
				return err
			}
			summary.Succeeded = append(summary.Succeeded, service)
			summary.TotalTerms += terms
			return nil
		})
	}

	errs := r.Pool.ExecuteTasks(tasks)
	for i, err := range errs {
		// Tasks the pool never started have no entry yet.
		if err != nil {
			if _, seen := summary.Failed[services[i]]; !seen {
				summary.Failed[services[i]] = err
			}
		}
	}

	logging.RunComplete(len(summary.Succeeded), len(summary.Failed), summary.TotalTerms)

	if len(summary.Failed) > 0 {
		return summary, fmt.Errorf("%d of %d services failed", len(summary.Failed), len(services))
	}
	return summary, nil
}

// processService runs fetch, parse, reconcile and write for one service
func (r *Runner) processService(ctx context.Context, service string) (int, error) {
	start := time.Now()
	result := metrics.ServiceResult{Service: service}

	out, location, err := r.pipeline(ctx, service)
	result.Duration = time.Since(start)

	if out != nil {
		result.Terms = len(out.Terms)
		result.RowErrors = len(out.RowErrors)
		result.MissingBaseline, result.MissingRecurringFees = countGroupErrors(out.GroupErrors)
	}

	if err != nil {
		result.Err = err
		r.observe(result)
		logging.ServiceError(service, err)
		r.notify(service, err)
		return 0, err
	}

	r.observe(result)
	logging.ServiceComplete(service, result.Terms, result.RowErrors, result.Duration)
	logging.Debug("Wrote service output", map[string]interface{}{
		"service":  service,
		"location": location,
	})
	return result.Terms, nil
}

func (r *Runner) pipeline(ctx context.Context, service string) (*pricing.Output, string, error) {
	fetched, err := r.Fetcher.Fetch(ctx, service, string(r.Format))
	if err != nil {
		return nil, "", err
	}
	logging.ServiceStart(service, fetched.URL)

	f, err := os.Open(fetched.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open offer file: %w", err)
	}
	defer f.Close()

	out, err := r.Processor.Process(ctx, f, r.Format)
	if err != nil {
		return nil, "", fmt.Errorf("failed to process %s: %w", fetched.Path, err)
	}

	location, err := r.Sink.Write(ctx, service, out.Terms)
	if err != nil {
		return out, "", err
	}
	return out, location, nil
}

func (r *Runner) observe(result metrics.ServiceResult) {
	if r.Metrics != nil {
		r.Metrics.Observe(result)
	}
}

func (r *Runner) notify(service string, cause error) {
	if r.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := r.Notifier.ServiceFailed(ctx, service, cause); err != nil {
		logging.Error("Failed to send failure notification", err, map[string]interface{}{
			"service": service,
		})
	}
}

func countGroupErrors(errs []error) (missingBaseline, missingRecurring int) {
	for _, err := range errs {
		var mb *models.MissingBaselineError
		var mr *models.MissingRecurringFeeError
		switch {
		case errors.As(err, &mb):
			missingBaseline++
		case errors.As(err, &mr):
			missingRecurring++
		}
	}
	return missingBaseline, missingRecurring
}
