package list

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go/service/pricing/pricingiface"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"riprice/internal/aws"
	"riprice/internal/aws/pricing/services"
	"riprice/internal/config"
)

// newPricingAPI is replaced in tests
var newPricingAPI = func(profile string) (pricingiface.PricingAPI, error) {
	sess, err := aws.NewSession(profile, aws.PricingRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return aws.NewPricingClient(sess), nil
}

// NewServicesCmd creates the services command
func NewServicesCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "services",
		Short: "List reservable services",
		Long: `List the services riprice can process.

With --remote, every service code published by the AWS Price List API is listed
and the ones riprice can process are highlighted.`,
		Example: `  # List reservable services
  riprice list services

  # List every service in the Price List API
  riprice list services --remote --profile pricing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				return runRemoteServices(cmd.Context(), cmd.OutOrStdout(), config.Config.Profile)
			}
			return runServices(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Query the AWS Price List API")

	return cmd
}

func runServices(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tINSTANCE-BASED\tOPT-IN")
	for _, s := range services.DefaultRegistry.List() {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", s.Code, s.Name, s.InstanceBased, s.OptIn)
	}
	return tw.Flush()
}

func runRemoteServices(ctx context.Context, w io.Writer, profile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	api, err := newPricingAPI(profile)
	if err != nil {
		return err
	}

	codes, err := aws.DescribeServices(ctx, api)
	if err != nil {
		return err
	}

	reservable := color.New(color.FgGreen)
	for _, code := range codes {
		if _, ok := services.DefaultRegistry.Lookup(code); ok {
			reservable.Fprintln(w, code)
			continue
		}
		fmt.Fprintln(w, code)
	}
	return nil
}
