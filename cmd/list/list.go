package list

import (
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List services and AWS profiles",
		Long: `List supporting information for riprice runs.
Currently supports listing:
  - Reservable services known to riprice, or every service in the Price List API
  - Available AWS credential profiles`,
	}

	cmd.AddCommand(NewServicesCmd())
	cmd.AddCommand(NewProfilesCmd())

	return cmd
}
