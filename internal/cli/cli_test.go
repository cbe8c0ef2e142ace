package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&errOut)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_PreprocessTrainEvaluate(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(raw, []byte(
		"purchased,price,product_category,brand\n"+
			"0,10,shoes,acme\n1,,books,zeta\n0,12,shoes,\n1,30,books,zeta\n0,11,toys,acme\n1,31,books,zeta\n"), 0o644))
	processed := filepath.Join(dir, "processed.csv")
	modelPath := filepath.Join(dir, "model.bin")

	_, err := runCLI(t, "preprocess", "--input", raw, "--output", processed)
	require.NoError(t, err)
	assert.FileExists(t, processed)

	out, err := runCLI(t, "train", "--input", processed, "--model", modelPath, "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Validation RMSE:")
	assert.FileExists(t, modelPath)

	plot := filepath.Join(dir, "loss.png")
	_, err = runCLI(t, "evaluate", "--model", modelPath, "--plot", plot)
	require.NoError(t, err)
	assert.FileExists(t, plot)
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ecomml.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("preprocess:\n  raw_path: "+filepath.Join(dir, "absent.csv")+"\n"), 0o644))

	_, err := runCLI(t, "--config", cfgPath, "preprocess")
	assert.ErrorContains(t, err, "absent.csv")
}

func TestCLI_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "fit")
	assert.Error(t, err)
}

func TestCLI_TrainSeedDefault(t *testing.T) {
	train, _, err := newRootCmd(&bytes.Buffer{}).Find([]string{"train"})
	require.NoError(t, err)
	assert.Equal(t, "42", train.Flags().Lookup("seed").DefValue)
}

func TestCLI_ServeNeedsModel(t *testing.T) {
	_, err := runCLI(t, "serve", "--model-dir", t.TempDir())
	assert.ErrorContains(t, err, "load model")
}
