// Package stages implements the local pipeline steps: preprocess, train and
// evaluate. Each one reads its input file, does its work and writes its
// output file.
package stages

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DebasishMaji/ecommerce-personalization/internal/config"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/data"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/dataprep"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/pipeline"
)

// PreprocessResult summarises a preprocess run.
type PreprocessResult struct {
	Rows          int
	InputColumns  int
	OutputColumns int
	MissingBefore int
	MissingAfter  int
}

// Preprocess forward-fills the raw file, one-hot encodes the categorical
// columns and writes the processed file.
func Preprocess(cfg config.PreprocessConfig, logger *slog.Logger) (PreprocessResult, error) {
	raw, err := data.ReadTable(cfg.RawPath)
	if err != nil {
		return PreprocessResult{}, fmt.Errorf("read raw data: %w", err)
	}
	logger.Info("loaded raw data", "path", cfg.RawPath, "rows", len(raw.Rows), "columns", len(raw.Header))

	p := pipeline.NewPipeline(
		pipeline.RequireColumns(cfg.CategoricalColumns...),
		pipeline.ForwardFill(),
		pipeline.OneHot(cfg.CategoricalColumns...),
	)
	processed, err := p.Run(raw)
	if err != nil {
		return PreprocessResult{}, fmt.Errorf("preprocess: %w", err)
	}

	if dir := filepath.Dir(cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return PreprocessResult{}, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := data.WriteTable(cfg.OutputPath, processed); err != nil {
		return PreprocessResult{}, fmt.Errorf("write processed data: %w", err)
	}

	res := PreprocessResult{
		Rows:          len(processed.Rows),
		InputColumns:  len(raw.Header),
		OutputColumns: len(processed.Header),
		MissingBefore: sum(dataprep.CountMissing(raw)),
		MissingAfter:  sum(dataprep.CountMissing(processed)),
	}
	logger.Info("data preprocessing complete",
		"path", cfg.OutputPath,
		"rows", res.Rows,
		"columns", res.OutputColumns,
		"missing_before", res.MissingBefore,
		"missing_after", res.MissingAfter,
	)
	return res, nil
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}
