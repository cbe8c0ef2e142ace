package stages

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DebasishMaji/ecommerce-personalization/internal/config"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/data"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/loader"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/model"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/stats"
)

// TrainResult summarises a training run.
type TrainResult struct {
	Target     string
	Features   []string
	TrainRows  int
	ValRows    int
	RMSE       float64
	MAE        float64
	R2         float64
	MaxDepth   int // deepest tree in the ensemble
	Leaves     int // leaves across all trees
	History    model.History
	Booster    *model.Booster
	Validation []float64 // predictions on the held-out rows
}

// Train fits the booster on the processed file, saves it and reports the
// validation RMSE.
func Train(cfg config.TrainConfig, logger *slog.Logger) (TrainResult, error) {
	table, err := data.ReadTable(cfg.DataPath)
	if err != nil {
		return TrainResult{}, fmt.Errorf("read processed data: %w", err)
	}

	labelCol, err := targetIndex(table, cfg.TargetColumn)
	if err != nil {
		return TrainResult{}, err
	}
	if cfg.TargetColumn == "" {
		logger.Warn("no target column configured, using the first column", "target", table.Header[labelCol])
	}

	X, y, err := data.Samples(table, labelCol)
	if err != nil {
		return TrainResult{}, fmt.Errorf("parse processed data: %w", err)
	}
	if n := stats.CountNaN(y); n > 0 {
		return TrainResult{}, fmt.Errorf("target column %q has %d missing values", table.Header[labelCol], n)
	}
	summary := stats.Summarize(y)
	logger.Info("loaded training data",
		"path", cfg.DataPath,
		"rows", len(X),
		"features", len(table.Header)-1,
		"target", table.Header[labelCol],
		"target_mean", summary.Mean,
		"target_std", summary.Std,
		"target_min", summary.Min,
		"target_median", summary.Median,
		"target_max", summary.Max,
	)

	XTrain, XVal, yTrain, yVal := loader.TrainTestSplit(X, y, cfg.TestRatio, cfg.Seed)

	booster := model.NewBooster(
		model.WithMaxDepth(cfg.MaxDepth),
		model.WithEta(cfg.Eta),
		model.WithRounds(cfg.Rounds),
		model.WithObjective(cfg.Objective),
		model.WithLambda(cfg.Lambda),
		model.WithGamma(cfg.Gamma),
		model.WithMinChildWeight(cfg.MinChildWeight),
		model.WithWorkers(cfg.Workers),
		model.WithLogger(logger),
	)
	history, err := booster.Train(XTrain, yTrain, XVal, yVal)
	if err != nil {
		return TrainResult{}, fmt.Errorf("train: %w", err)
	}

	if dir := filepath.Dir(cfg.ModelPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return TrainResult{}, fmt.Errorf("create model dir: %w", err)
		}
	}
	if err := booster.Save(cfg.ModelPath); err != nil {
		return TrainResult{}, fmt.Errorf("save model: %w", err)
	}

	preds := booster.Predict(XVal)
	res := TrainResult{
		Target:     table.Header[labelCol],
		Features:   data.FeatureNames(table, labelCol),
		TrainRows:  len(XTrain),
		ValRows:    len(XVal),
		RMSE:       model.RMSE(yVal, preds),
		MAE:        model.MAE(yVal, preds),
		R2:         model.R2(yVal, preds),
		History:    history,
		Booster:    booster,
		Validation: preds,
	}
	for _, tree := range booster.Trees {
		res.MaxDepth = max(res.MaxDepth, tree.Depth())
		res.Leaves += tree.Leaves()
	}
	attrs := []any{
		"model", cfg.ModelPath,
		"train_rows", res.TrainRows,
		"val_rows", res.ValRows,
		"trees", len(booster.Trees),
		"max_depth", res.MaxDepth,
		"leaves", res.Leaves,
		"rmse", res.RMSE,
		"mae", res.MAE,
		"r2", res.R2,
	}
	if len(history.Values) > 0 {
		attrs = append(attrs, "eval_"+history.Metric, history.Last())
	}
	if cfg.Objective == model.BinaryLogistic {
		attrs = append(attrs, "accuracy", model.Accuracy(yVal, model.BinaryPredFromProba(preds, 0.5)))
	}
	logger.Info("training complete", attrs...)
	return res, nil
}

// targetIndex resolves the label column: the named column when set,
// otherwise the first column.
func targetIndex(t *data.Table, name string) (int, error) {
	if len(t.Header) < 2 {
		return 0, fmt.Errorf("processed data needs a target and at least one feature, got %d columns", len(t.Header))
	}
	if name == "" {
		return 0, nil
	}
	j := t.ColumnIndex(name)
	if j < 0 {
		return 0, fmt.Errorf("target column %q not found", name)
	}
	return j, nil
}
