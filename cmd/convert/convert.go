package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"riprice/internal/aws/pricing"
	"riprice/internal/aws/pricing/services"
	"riprice/internal/config"
	"riprice/internal/logging"
	"riprice/internal/output"
)

type convertOptions struct {
	input        string
	output       string
	format       string
	outputFormat string
	delimiter    string
}

// NewConvertCmd creates the convert command
func NewConvertCmd() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a local price list file",
		Long: `Convert a price list file that is already on disk, without any AWS access.

The price list format is taken from the file extension unless --format is given.

Examples:
  # Convert a downloaded RDS price list and print the result
  riprice convert --input index.csv

  # Convert a JSON price list into a comma separated file
  riprice convert --input AmazonES.json --delimiter , --output AmazonES.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Price list file to convert (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Price list format (csv, json; default: from the file extension)")
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "csv", "Output format (csv, json)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "|", "Field delimiter of delimited output")
	// Only fails for an unknown flag; "input" is registered above.
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// inputFormat picks the price list format from the flag or the file extension
func inputFormat(flag, path string) (pricing.Format, error) {
	if flag != "" {
		return pricing.ParseFormat(flag)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "json" {
		return pricing.FormatJSON, nil
	}
	return pricing.FormatCSV, nil
}

func runConvert(cmd *cobra.Command, opts *convertOptions) error {
	format, err := inputFormat(opts.format, opts.input)
	if err != nil {
		return err
	}

	outFormat := output.Format(strings.ToLower(opts.outputFormat))
	if outFormat != output.FormatCSV && outFormat != output.FormatJSON {
		return fmt.Errorf("invalid output format: %s", opts.outputFormat)
	}

	delim, err := config.ParseDelimiter(opts.delimiter)
	if err != nil {
		return err
	}

	in, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.input, err)
	}
	defer in.Close()

	out, err := pricing.NewProcessor(services.DefaultRegistry).Process(cmd.Context(), in, format)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.output, err)
		}
		defer f.Close()
		w = f
	}

	if err := output.Encode(w, out.Terms, outFormat, delim); err != nil {
		return err
	}

	logging.Info("Converted price list", map[string]interface{}{
		"input":          opts.input,
		"rows":           out.Rows,
		"not_applicable": out.NotApplicable,
		"terms":          len(out.Terms),
		"row_errors":     len(out.RowErrors),
		"group_errors":   len(out.GroupErrors),
	})
	return nil
}
