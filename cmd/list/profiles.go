package list

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"riprice/internal/aws"
)

// listProfiles is replaced in tests
var listProfiles = aws.ListProfiles

// NewProfilesCmd creates and returns the profiles command
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available AWS profiles",
		Long: `List all available AWS credential profiles from the system.
These profiles are read from the AWS credentials and config files.`,
		Example: `  # List all available AWS profiles
  riprice list profiles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runProfiles(w io.Writer) error {
	profiles, err := listProfiles()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	for _, profile := range profiles {
		fmt.Fprintln(w, profile)
	}

	return nil
}
