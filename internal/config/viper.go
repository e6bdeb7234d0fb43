package config

import (
	"fmt"
	"os"
	"strings"

	"riprice/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by riprice
const EnvPrefix = "RIPRICE"

// DefaultOfferURL is the bulk offer file location; the service code and format are substituted.
const DefaultOfferURL = "https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/%s/current/index.%s"

// setting describes one configuration key
type setting struct {
	Key  string
	Flag string
	// LegacyEnv is an unprefixed variable name kept for existing deployments
	LegacyEnv string
	Default   interface{}
}

var settings = []setting{
	{Key: "aws.profile", Flag: "profile", Default: "default"},
	{Key: "aws.upload_role", Flag: "upload-role", Default: ""},
	{Key: "app.max_workers", Flag: "max-workers", Default: 4},
	{Key: "app.task_timeout", Flag: "task-timeout", Default: "15m"},
	{Key: "app.log_format", Flag: "log-format", Default: "text"},
	{Key: "app.log_level", Flag: "log-level", Default: "INFO"},
	{Key: "run.services", Flag: "services", Default: ""},
	{Key: "run.include_ec2", Flag: "include-ec2", LegacyEnv: "ComputeEC2", Default: false},
	{Key: "run.format", Flag: "format", LegacyEnv: "PRICELIST_FORMAT", Default: "csv"},
	{Key: "run.delimiter", Flag: "delimiter", LegacyEnv: "DELIMITER", Default: "|"},
	{Key: "run.output", Flag: "output", Default: "filesystem"},
	{Key: "run.output_format", Flag: "output-format", Default: "csv"},
	{Key: "run.output_dir", Flag: "output-dir", Default: "output"},
	{Key: "run.bucket", Flag: "bucket", LegacyEnv: "BUCKET", Default: ""},
	{Key: "run.bucket_region", Flag: "bucket-region", Default: ""},
	{Key: "run.compress", Flag: "compress", Default: false},
	{Key: "run.sns_topic", Flag: "sns-topic", LegacyEnv: "SNS", Default: ""},
	{Key: "run.cache_dir", Flag: "cache-dir", Default: "cache"},
	{Key: "run.offer_url", Flag: "offer-url", Default: DefaultOfferURL},
	{Key: "run.metrics_file", Flag: "metrics-file", Default: ""},
	{Key: "run.postgres_dsn", Flag: "postgres-dsn", Default: ""},
	{Key: "run.postgres_table", Flag: "postgres-table", Default: "reserved_instance_terms"},
}

// envName returns the prefixed environment variable for a key
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Setup applies defaults and environment bindings to v
func Setup(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, s := range settings {
		v.SetDefault(s.Key, s.Default)
		if s.LegacyEnv != "" {
			// The prefixed name wins over the legacy one.
			if err := v.BindEnv(s.Key, envName(s.Key), s.LegacyEnv); err != nil {
				return fmt.Errorf("failed to bind environment for %s: %w", s.Key, err)
			}
		}
	}
	return nil
}

// BindFlags binds the command's flags that correspond to configuration keys
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, s := range settings {
		f := cmd.Flags().Lookup(s.Flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(s.Key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", s.Flag, err)
		}
	}
	return nil
}

// parameterSource tracks where each parameter value came from
type parameterSource struct {
	Key    string
	Value  interface{}
	Source string
}

// getParameterSource determines where a parameter value came from (config file, env var, flag, or default)
func getParameterSource(v *viper.Viper, s setting, cmd *cobra.Command) parameterSource {
	value := v.Get(s.Key)

	if cmd != nil {
		if f := cmd.Flags().Lookup(s.Flag); f != nil && f.Changed {
			return parameterSource{s.Key, value, "command line flag"}
		}
	}

	if _, exists := os.LookupEnv(envName(s.Key)); exists {
		return parameterSource{s.Key, value, "environment variable"}
	}
	if s.LegacyEnv != "" {
		if _, exists := os.LookupEnv(s.LegacyEnv); exists {
			return parameterSource{s.Key, value, "environment variable " + s.LegacyEnv}
		}
	}

	if v.InConfig(s.Key) {
		return parameterSource{s.Key, value, "config file"}
	}

	return parameterSource{s.Key, value, "default value"}
}

// LogConfigurationSources logs the source of each configuration parameter
func LogConfigurationSources(shouldLog bool, cmd *cobra.Command) {
	if !shouldLog {
		return
	}

	logging.Debug("Configuration parameter sources:", nil)
	for _, s := range settings {
		source := getParameterSource(viper.GetViper(), s, cmd)
		value := source.Value
		if s.Key == "run.postgres_dsn" && value != "" {
			value = "<redacted>"
		}
		logging.Debug(fmt.Sprintf("  %s = %v (from %s)", source.Key, value, source.Source), nil)
	}
}

// InitConfig initializes the global Viper configuration
func InitConfig(shouldLog bool) error {
	v := viper.GetViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := Setup(v); err != nil {
		return err
	}

	// Try to read config file but don't error if not found
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		if shouldLog {
			logging.Debug("No config file found, using defaults and environment variables", nil)
		}
	} else if shouldLog {
		logging.Debug("Loaded config file", map[string]interface{}{
			"path": v.ConfigFileUsed(),
		})
	}

	return nil
}

// SetConfigFile sets a custom config file path and reloads the configuration
func SetConfigFile(configFile string) error {
	viper.SetConfigFile(configFile)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// DefaultConfigYAML is written by "riprice init config"
const DefaultConfigYAML = `# riprice configuration file

# AWS Configuration
aws:
  profile: default  # AWS profile to use (supports SSO profiles)
  upload_role: ""  # Role name or ARN to assume for S3 uploads

# Application Configuration
app:
  max_workers: 4  # Services processed concurrently
  task_timeout: 15m  # Time limit for downloading and processing one service
  log_format: text  # Log output format (text or json)
  log_level: INFO  # Set logging level (DEBUG, INFO, WARN, ERROR)

# Run Command Configuration
run:
  # Services to process (default: every reservable service)
  services:
    # - AmazonRDS
    # - AmazonElastiCache
  include_ec2: false  # AmazonEC2 is only processed when enabled
  format: csv  # Price list format to download (csv or json)
  delimiter: "|"  # Field delimiter of the generated file
  output: filesystem  # Output destination (filesystem, s3 or postgres)
  output_format: csv  # Output file format (csv or json)
  output_dir: output  # Directory for filesystem output
  bucket: ""  # S3 bucket name (required when output=s3)
  bucket_region: ""  # S3 bucket region
  compress: false  # Gzip output files
  sns_topic: ""  # SNS topic ARN notified when a service fails
  cache_dir: cache  # Downloaded offer files
  metrics_file: ""  # Prometheus textfile written after each run
  postgres_dsn: ""  # Connection string (required when output=postgres)
  postgres_table: reserved_instance_terms
`

// DefaultEnvFile is written by "riprice init env"
func DefaultEnvFile() string {
	var b strings.Builder
	b.WriteString("# riprice environment configuration\n")
	for _, s := range settings {
		if s.Key == "run.offer_url" {
			continue
		}
		fmt.Fprintf(&b, "%s=%v\n", envName(s.Key), s.Default)
	}
	return b.String()
}
