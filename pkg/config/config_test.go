package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "memory", cfg.Broker.Type)
	assert.Equal(t, 10*time.Second, cfg.Broker.PublishTimeout)
	assert.InDelta(t, 0.5, cfg.Eligibility.MaxAdvanceRatio, 1e-9)
	assert.InDelta(t, 0.02, cfg.Disbursement.FeeRate, 1e-9)
	assert.Equal(t, 720*time.Hour, cfg.Disbursement.RepaymentPeriod)
	assert.Equal(t, "payadvance", cfg.Kafka.GroupID)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.True(t, cfg.Runs(ServiceAdvance))
	assert.True(t, cfg.Runs(ServiceRepayment))
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "AUTH_JWT_SECRET=file-secret\nBROKER_TYPE=kafka\nKAFKA_GROUP_ID=disbursement-service\nAPP_SERVICES=disbursement\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.custom"), []byte(content), 0o600))
	t.Chdir(dir)
	// godotenv does not override variables already present.
	for _, k := range []string{"AUTH_JWT_SECRET", "BROKER_TYPE", "KAFKA_GROUP_ID", "APP_SERVICES"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(".env.custom")
	require.NoError(t, err)

	assert.Equal(t, "kafka", cfg.Broker.Type)
	assert.Equal(t, "disbursement-service", cfg.Kafka.GroupID)
	assert.True(t, cfg.Runs(ServiceDisbursement))
	assert.False(t, cfg.Runs(ServiceAdvance))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown broker", key: "BROKER_TYPE", val: "rabbit"},
		{name: "unknown lock", key: "LOCK_TYPE", val: "etcd"},
		{name: "ratio above one", key: "ELIGIBILITY_MAX_ADVANCE_RATIO", val: "1.5"},
		{name: "negative fee", key: "DISBURSEMENT_FEE_RATE", val: "-0.1"},
		{name: "unknown service", key: "APP_SERVICES", val: "advance,billing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_JWT_SECRET", "test-secret")
			t.Setenv(tt.key, tt.val)
			t.Chdir(t.TempDir())

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue("short"))
	assert.Equal(t, "po****able", maskValue("postgres://u:p@h/db?sslmode=disable"))
}

func TestFindEnvFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.walk"), []byte("X=1\n"), 0o600))
	t.Chdir(nested)

	found, err := findEnvFile(".env.walk")
	require.NoError(t, err)
	assert.Equal(t, ".env.walk", filepath.Base(found))

	_, err = findEnvFile(".env.missing-" + filepath.Base(root))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
