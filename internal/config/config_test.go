package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "data/raw/ecommerce_data.csv", cfg.Preprocess.RawPath)
	assert.Equal(t, []string{"product_category", "brand"}, cfg.Preprocess.CategoricalColumns)
	assert.Equal(t, cfg.Preprocess.OutputPath, cfg.Train.DataPath)
	assert.Equal(t, cfg.Train.ModelPath, cfg.Evaluate.ModelPath)
	assert.Equal(t, 0.2, cfg.Train.TestRatio)
	assert.Equal(t, int64(42), cfg.Train.Seed)
	assert.Equal(t, "ml.m4.xlarge", cfg.Deploy.InstanceType)
	assert.Equal(t, int32(1), cfg.Deploy.InstanceCount)
	assert.Equal(t, "text/csv", cfg.Proxy.ContentType)
	assert.ElementsMatch(t, []string{"role_arn", "model_data", "image_uri"}, cfg.Deploy.Placeholders())
	assert.NoError(t, cfg.Deploy.Validate())
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecomml.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
train:
  rounds: 10
  target_column: purchased
deploy:
  role_arn: arn:aws:iam::123:role/r
  wait_timeout: 5m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 10, cfg.Train.Rounds)
	assert.Equal(t, "purchased", cfg.Train.TargetColumn)
	assert.Equal(t, 0.2, cfg.Train.Eta) // untouched default
	assert.Equal(t, "arn:aws:iam::123:role/r", cfg.Deploy.RoleARN)
	assert.Equal(t, 5*time.Minute, cfg.Deploy.WaitTimeout)
	assert.NotContains(t, cfg.Deploy.Placeholders(), "role_arn")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("train: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ENDPOINT_NAME", "ep-1")
	t.Setenv("ECOMML_MODEL_PATH", "/tmp/m.bin")
	t.Setenv("ECOMML_SEED", "7")
	t.Setenv("ECOMML_UPLOAD", "true")
	t.Setenv("SM_MODEL_DIR", "/models")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ep-1", cfg.Proxy.EndpointName)
	assert.Equal(t, "/tmp/m.bin", cfg.Train.ModelPath)
	assert.Equal(t, "/tmp/m.bin", cfg.Evaluate.ModelPath)
	assert.Equal(t, "/tmp/m.bin", cfg.Deploy.ModelPath)
	assert.Equal(t, int64(7), cfg.Train.Seed)
	assert.True(t, cfg.Deploy.Upload)
	assert.Equal(t, "/models", cfg.Serve.ModelDir)
}

func TestApplyEnv_BadValues(t *testing.T) {
	t.Setenv("ECOMML_SEED", "seven")
	_, err := Load("")
	assert.ErrorContains(t, err, "ECOMML_SEED")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ECOMML_TEST_DOTENV=from-file\nECOMML_TEST_PRESET=from-file\n"), 0o644))
	t.Setenv("ECOMML_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("ECOMML_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env"), path))
	assert.Equal(t, "from-file", os.Getenv("ECOMML_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("ECOMML_TEST_PRESET"))
}

func TestDeployValidate(t *testing.T) {
	d := Default().Deploy
	d.InstanceCount = 0
	assert.Error(t, d.Validate())

	d = Default().Deploy
	d.RoleARN = ""
	assert.ErrorContains(t, d.Validate(), "role_arn")
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo,
	} {
		assert.Equal(t, want, (&Config{LogLevel: in}).SlogLevel(), in)
	}
}
