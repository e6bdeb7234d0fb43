package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riprice/internal/config"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	config.Config = &config.GlobalConfig{}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExecute(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
aws:
  profile: test-profile
  upload_role: UploadRole
app:
  max_workers: 16
  task_timeout: 5m
`), 0644))

	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		validate func(t *testing.T, out string)
	}{
		{
			name: "version command should not require config",
			args: []string{"version"},
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, "riprice ")
				assert.Empty(t, config.Config.Profile, "version command should not load config")
			},
		},
		{
			name:    "invalid command should return error",
			args:    []string{"invalid"},
			wantErr: true,
		},
		{
			name: "valid config file should be loaded",
			args: []string{"--config", configFile, "list", "services"},
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, "AmazonRDS")
				assert.Equal(t, "test-profile", config.Config.Profile)
				assert.Equal(t, "UploadRole", config.Config.UploadRole)
				assert.Equal(t, 16, config.Config.MaxWorkers)
				assert.Equal(t, 5*time.Minute, config.Config.TaskTimeout)
			},
		},
		{
			name: "command line flags should override config",
			args: []string{
				"--config", configFile,
				"--profile", "override-profile",
				"--upload-role", "override-role",
				"--max-workers", "32",
				"list", "services",
			},
			validate: func(t *testing.T, out string) {
				assert.Equal(t, "override-profile", config.Config.Profile)
				assert.Equal(t, "override-role", config.Config.UploadRole)
				assert.Equal(t, 32, config.Config.MaxWorkers)
				assert.Equal(t, 5*time.Minute, config.Config.TaskTimeout)
			},
		},
		{
			name: "default values should be set when not specified",
			args: []string{"list", "services"},
			validate: func(t *testing.T, out string) {
				assert.Equal(t, "default", config.Config.Profile)
				assert.Empty(t, config.Config.UploadRole)
				assert.Equal(t, 4, config.Config.MaxWorkers)
				assert.Equal(t, 15*time.Minute, config.Config.TaskTimeout)
				assert.Equal(t, "INFO", config.Config.LogLevel)
			},
		},
		{
			name:    "invalid log level should return error",
			args:    []string{"--log-level", "LOUD", "list", "services"},
			wantErr: true,
		},
		{
			name:    "missing config file should return error",
			args:    []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "list", "services"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeRoot(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, out)
			}
		})
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("RIPRICE_AWS_PROFILE", "env-profile")
	t.Setenv("RIPRICE_APP_MAX_WORKERS", "2")

	_, err := executeRoot(t, "list", "services")
	require.NoError(t, err)
	assert.Equal(t, "env-profile", config.Config.Profile)
	assert.Equal(t, 2, config.Config.MaxWorkers)
}
