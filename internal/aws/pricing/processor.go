package pricing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"riprice/internal/aws/pricing/models"
	"riprice/internal/aws/pricing/parser"
	"riprice/internal/aws/pricing/reconcile"
	"riprice/internal/aws/pricing/services"
	"riprice/internal/logging"
)

// Format is the bulk offer file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported price list format %q (expected csv or json)", s)
	}
}

// Output is the result of processing one price list
type Output struct {
	Terms []models.ComparisonTerm
	// RowErrors are rows or price dimensions that could not be parsed
	RowErrors []error
	// GroupErrors are products or offerings that could not be reconciled
	GroupErrors []error

	Rows          int
	NotApplicable int
	Entries       int
	Products      int
}

// Processor runs the parse and reconcile pipeline for one price list
type Processor struct {
	parser *parser.Parser
	engine *reconcile.Engine
}

// NewProcessor creates a processor over the given service registry
func NewProcessor(registry *services.Registry) *Processor {
	return &Processor{
		parser: parser.NewParser(registry),
		engine: reconcile.NewEngine(),
	}
}

// Process reads a raw bulk offer file, including any CSV preamble, and returns
// the comparison terms. Row and group failures are collected, not returned.
func (p *Processor) Process(ctx context.Context, r io.Reader, format Format) (*Output, error) {
	var (
		parsed *parser.Result
		err    error
	)
	switch format {
	case FormatCSV:
		body, skipped, serr := parser.SkipPreamble(r)
		if serr != nil {
			return nil, serr
		}
		logging.Debug("Skipped price list preamble", map[string]interface{}{"lines": skipped})
		parsed, err = p.parser.ParseCSV(ctx, body)
	case FormatJSON:
		parsed, err = p.parser.ParseJSON(ctx, r)
	default:
		return nil, fmt.Errorf("unsupported price list format %q", format)
	}
	if err != nil {
		return nil, err
	}

	reconciled := p.engine.Reconcile(parsed.Entries)

	for _, e := range parsed.Errors {
		logging.Debug("Dropped price row", map[string]interface{}{"error": e.Error()})
	}
	for _, e := range reconciled.Errors {
		logging.Warn("Skipped offering", map[string]interface{}{"error": e.Error()})
	}

	return &Output{
		Terms:         reconciled.Terms,
		RowErrors:     parsed.Errors,
		GroupErrors:   reconciled.Errors,
		Rows:          parsed.Rows,
		NotApplicable: parsed.NotApplicable,
		Entries:       len(parsed.Entries),
		Products:      reconciled.Products,
	}, nil
}
