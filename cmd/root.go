package cmd

import (
	"fmt"
	"time"

	"riprice/cmd/convert"
	initCmd "riprice/cmd/init"
	"riprice/cmd/list"
	"riprice/cmd/run"
	"riprice/cmd/version"
	"riprice/internal/config"
	"riprice/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the riprice command tree
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "riprice",
		Short: "riprice - AWS reserved instance price comparison",
		Long: `riprice turns the AWS bulk price lists into reserved instance comparison files.
For every reserved offering it reports the on-demand baseline, the term cost,
the savings and the break-even point.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Version and help work without any configuration.
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return loadGlobalConfig(cmd, configFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringP("profile", "p", "default", "AWS profile to use (supports SSO profiles)")
	rootCmd.PersistentFlags().String("upload-role", "", "Role name or ARN to assume for S3 uploads")
	rootCmd.PersistentFlags().Int("max-workers", 4, "Maximum number of services processed concurrently")
	rootCmd.PersistentFlags().Duration("task-timeout", 15*time.Minute, "Time limit for downloading and processing one service")
	rootCmd.PersistentFlags().String("log-format", "text", "Log output format (text or json)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "Set logging level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(run.NewRunCmd())
	rootCmd.AddCommand(convert.NewConvertCmd())
	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(initCmd.NewInitCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	return NewRootCmd().Execute()
}

// loadGlobalConfig merges config file, environment and flags into config.Config and configures logging
func loadGlobalConfig(cmd *cobra.Command, configFile string) error {
	if err := config.InitConfig(false); err != nil {
		return err
	}
	if configFile != "" {
		if err := config.SetConfigFile(configFile); err != nil {
			return err
		}
	}

	v := viper.GetViper()
	if err := config.BindFlags(v, cmd); err != nil {
		return err
	}

	level, err := logging.ParseLevel(v.GetString("app.log_level"))
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(v.GetString("app.log_format"))
	if err != nil {
		return err
	}
	logging.Configure(logging.LogConfig{
		Level:  level,
		Format: format,
	})

	config.Config.Profile = v.GetString("aws.profile")
	config.Config.UploadRole = v.GetString("aws.upload_role")
	config.Config.MaxWorkers = v.GetInt("app.max_workers")
	config.Config.TaskTimeout = v.GetDuration("app.task_timeout")
	config.Config.LogFormat = v.GetString("app.log_format")
	config.Config.LogLevel = level.String()

	if config.Config.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be greater than 0, got %d", config.Config.MaxWorkers)
	}

	logging.Debug("Loaded configuration", map[string]interface{}{
		"config_file": v.ConfigFileUsed(),
		"profile":     config.Config.Profile,
		"max_workers": config.Config.MaxWorkers,
	})
	return nil
}
