package profile

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: "sqlite",
	}

	err := p.Validate()
	require.NoError(t, err)

	assert.Equal(t, "dev", p.Mode)
	assert.Contains(t, p.DSN, "athena_dev.db")
	assert.Equal(t, time.Minute, p.ReminderInterval)
	assert.Equal(t, 100, p.ReminderBatchSize)
	assert.Equal(t, 1, p.ReminderParallelism)
	assert.Equal(t, "UTC", p.DefaultTimezone)
}

func TestValidateUnknownModeFallsBackToDemo(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "staging", Data: dir, Driver: "sqlite"}

	err := p.Validate()
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Mode)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ATHENA_FCM_ENABLED", "true")
	t.Setenv("ATHENA_FCM_PROJECT_ID", "athena-test")
	t.Setenv("ATHENA_FCM_CREDENTIALS_FILE", "/tmp/creds.json")
	t.Setenv("ATHENA_REMINDER_INTERVAL", "30s")
	t.Setenv("ATHENA_REMINDER_BATCH_SIZE", "25")
	t.Setenv("ATHENA_DEFAULT_TIMEZONE", "Asia/Kuala_Lumpur")

	p := &Profile{}
	p.FromEnv()

	assert.True(t, p.IsFCMEnabled())
	assert.Equal(t, 30*time.Second, p.ReminderInterval)
	assert.Equal(t, 25, p.ReminderBatchSize)
	assert.Equal(t, "Asia/Kuala_Lumpur", p.DefaultTimezone)
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("ATHENA_REMINDER_INTERVAL", "not-a-duration")
	t.Setenv("ATHENA_REMINDER_BATCH_SIZE", "-3")

	p := &Profile{}
	p.FromEnv()

	assert.Zero(t, p.ReminderInterval)
	assert.Zero(t, p.ReminderBatchSize)
	assert.False(t, p.IsFCMEnabled())
}

func TestCheckDataDirMissing(t *testing.T) {
	_, err := checkDataDir(os.TempDir() + "/definitely-not-here-12345")
	assert.Error(t, err)
}
