package init

import (
	"github.com/spf13/cobra"

	"riprice/internal/config"
)

// NewEnvCmd creates the env subcommand
func NewEnvCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Create a default .env file",
		Long: `Create a .env file listing every RIPRICE_ environment variable with its default.

Legacy variable names (BUCKET, DELIMITER, PRICELIST_FORMAT, SNS, ComputeEC2) are
still honoured, but the prefixed names take precedence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDefaultFile(cmd.OutOrStdout(), output, config.DefaultEnvFile(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing file")
	cmd.Flags().StringVarP(&output, "output", "o", ".env", "Output file path")

	return cmd
}
