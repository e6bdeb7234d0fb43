package init

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(NewInitCmd(), "config", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created file:")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "delimiter: \"|\"")

	_, err = execute(NewInitCmd(), "config", "--output", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(NewInitCmd(), "config", "--output", path, "--force")
	assert.NoError(t, err)
}

func TestInitEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	_, err := execute(NewInitCmd(), "env", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "RIPRICE_RUN_FORMAT=csv\n")
	assert.Contains(t, string(data), "RIPRICE_RUN_INCLUDE_EC2=false\n")
}
