package aws

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riprice/internal/config"
)

func TestListProfilesFrom(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials")
	cfg := filepath.Join(dir, "config")

	require.NoError(t, os.WriteFile(creds, []byte("[default]\naws_access_key_id=x\n\n[pricing]\naws_access_key_id=y\n"), 0600))
	require.NoError(t, os.WriteFile(cfg, []byte("[default]\nregion=us-east-1\n\n[profile sso-dev]\nsso_session=corp\n\n[sso-session corp]\nsso_region=us-east-1\n"), 0600))

	profiles, err := listProfilesFrom(creds, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "pricing", "sso-dev"}, profiles)
}

func TestListProfilesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	profiles, err := listProfilesFrom(filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestRateLimiterBackoff(t *testing.T) {
	rl := NewRateLimiter(&config.RateLimitConfig{
		RequestsPerSecond: 50,
		MaxRetries:        3,
		BaseDelay:         10 * time.Millisecond,
		MaxDelay:          20 * time.Millisecond,
	})
	defer rl.Stop()

	assert.Equal(t, time.Duration(0), rl.getCurrentBackoff())

	rl.OnFailure()
	assert.Equal(t, 10*time.Millisecond, rl.getCurrentBackoff())
	rl.OnFailure()
	rl.OnFailure()
	assert.Equal(t, 20*time.Millisecond, rl.getCurrentBackoff())

	require.NoError(t, rl.Wait(context.Background()))

	rl.OnSuccess()
	assert.Equal(t, 0, rl.Failures())
	assert.Equal(t, 3, rl.MaxRetries())
}

func TestRateLimiterCancelled(t *testing.T) {
	rl := NewRateLimiter(&config.RateLimitConfig{RequestsPerSecond: 1, MaxRetries: 1, BaseDelay: time.Hour, MaxDelay: time.Hour})
	defer rl.Stop()
	rl.OnFailure()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.Canceled)
}
