package model

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/DebasishMaji/ecommerce-personalization/pkg/stats"
)

// BoosterParams are the boosting hyperparameters.
type BoosterParams struct {
	MaxDepth       int
	Eta            float64
	Rounds         int
	Objective      string
	Lambda         float64
	Gamma          float64
	MinChildWeight float64
}

// Booster is a gradient-boosted ensemble of regression trees. Each round fits
// one tree to the first and second derivatives of the objective.
type Booster struct {
	Params      BoosterParams
	BaseMargin  float64
	NumFeatures int
	Trees       []*RegressionTree

	obj     objective
	workers int
	logger  *slog.Logger
}

var _ Regressor = (*Booster)(nil)

// BoosterOption functional config
type BoosterOption func(*Booster)

func WithMaxDepth(d int) BoosterOption  { return func(b *Booster) { b.Params.MaxDepth = d } }
func WithEta(eta float64) BoosterOption { return func(b *Booster) { b.Params.Eta = eta } }
func WithRounds(n int) BoosterOption    { return func(b *Booster) { b.Params.Rounds = n } }
func WithObjective(name string) BoosterOption {
	return func(b *Booster) { b.Params.Objective = name }
}
func WithLambda(v float64) BoosterOption { return func(b *Booster) { b.Params.Lambda = v } }
func WithGamma(v float64) BoosterOption  { return func(b *Booster) { b.Params.Gamma = v } }
func WithMinChildWeight(v float64) BoosterOption {
	return func(b *Booster) { b.Params.MinChildWeight = v }
}
func WithWorkers(n int) BoosterOption { return func(b *Booster) { b.workers = n } }

// WithLogger receives one debug line per boosting round.
func WithLogger(l *slog.Logger) BoosterOption { return func(b *Booster) { b.logger = l } }

// DefaultBoosterParams matches the pipeline's fixed training settings.
func DefaultBoosterParams() BoosterParams {
	return BoosterParams{
		MaxDepth:       5,
		Eta:            0.2,
		Rounds:         100,
		Objective:      BinaryLogistic,
		Lambda:         1,
		Gamma:          0,
		MinChildWeight: 1,
	}
}

// NewBooster returns an untrained booster with the default parameters.
func NewBooster(opts ...BoosterOption) *Booster {
	b := &Booster{Params: DefaultBoosterParams()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// ---------------------------
// Public API: Train / Predict / Save / Load
// ---------------------------

// Train fits Params.Rounds trees on (X, y). When evalX is non-empty the
// objective's metric is computed on it after every round and returned.
// Missing feature values must be math.NaN().
func (b *Booster) Train(X [][]float64, y []float64, evalX [][]float64, evalY []float64) (History, error) {
	if len(X) == 0 {
		return History{}, errors.New("booster: empty X")
	}
	n := len(X)
	if len(y) != n {
		return History{}, errors.New("booster: X and y length mismatch")
	}
	if len(evalX) != len(evalY) {
		return History{}, errors.New("booster: eval X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return History{}, errors.New("booster: inconsistent number of features in X rows")
		}
	}
	obj, err := objectiveFor(b.Params.Objective)
	if err != nil {
		return History{}, err
	}
	if err := obj.CheckLabels(y); err != nil {
		return History{}, fmt.Errorf("booster: %w", err)
	}
	b.obj = obj
	b.NumFeatures = p
	b.BaseMargin = obj.BaseMargin(stats.Mean(y))
	b.Trees = make([]*RegressionTree, 0, b.Params.Rounds)

	treeParams := TreeParams{
		MaxDepth:       b.Params.MaxDepth,
		Lambda:         b.Params.Lambda,
		Gamma:          b.Params.Gamma,
		MinChildWeight: b.Params.MinChildWeight,
		Eta:            b.Params.Eta,
		Workers:        b.workers,
	}

	idx := make([]int, n)
	margins := make([]float64, n)
	for i := 0; i < n; i++ {
		idx[i] = i
		margins[i] = b.BaseMargin
	}
	evalMargins := make([]float64, len(evalX))
	for i := range evalMargins {
		evalMargins[i] = b.BaseMargin
	}

	history := History{Metric: obj.EvalMetric()}
	grads := make([]gradPair, n)
	for round := 0; round < b.Params.Rounds; round++ {
		for i := 0; i < n; i++ {
			grads[i].g, grads[i].h = obj.Gradient(obj.Transform(margins[i]), y[i])
		}
		tree, err := growTree(X, grads, idx, p, treeParams)
		if err != nil {
			return history, fmt.Errorf("booster: round %d: %w", round, err)
		}
		b.Trees = append(b.Trees, tree)
		for i := 0; i < n; i++ {
			margins[i] += tree.Predict(X[i])
		}

		if len(evalX) == 0 {
			continue
		}
		preds := make([]float64, len(evalX))
		for i := range evalX {
			evalMargins[i] += tree.Predict(evalX[i])
			preds[i] = obj.Transform(evalMargins[i])
		}
		v := obj.Eval(evalY, preds)
		history.Values = append(history.Values, v)
		if b.logger != nil {
			b.logger.Debug("boosting round", "round", round, "metric", "eval-"+history.Metric, "value", v)
		}
	}
	return history, nil
}

// PredictMargin returns the untransformed ensemble output for each row.
func (b *Booster) PredictMargin(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		m := b.BaseMargin
		for _, t := range b.Trees {
			m += t.Predict(x)
		}
		out[i] = m
	}
	return out
}

// Predict returns predictions on the objective's scale: probabilities for
// binary:logistic, raw values for squared error.
func (b *Booster) Predict(X [][]float64) []float64 {
	out := b.PredictMargin(X)
	obj := b.objective()
	for i := range out {
		out[i] = obj.Transform(out[i])
	}
	return out
}

// PredictMatrix predicts every row of a dense feature matrix.
func (b *Booster) PredictMatrix(X mat.Matrix) []float64 {
	r, _ := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = mat.Row(nil, i, X)
	}
	return b.Predict(rows)
}

func (b *Booster) objective() objective {
	if b.obj != nil {
		return b.obj
	}
	obj, err := objectiveFor(b.Params.Objective)
	if err != nil {
		// Only reachable for a hand-built booster; fall back to the identity link.
		return squaredError{}
	}
	b.obj = obj
	return obj
}

// boosterState is the gob payload.
type boosterState struct {
	Params      BoosterParams
	BaseMargin  float64
	NumFeatures int
	Trees       []*RegressionTree
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (b *Booster) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	state := boosterState{Params: b.Params, BaseMargin: b.BaseMargin, NumFeatures: b.NumFeatures, Trees: b.Trees}
	if err := enc.Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (b *Booster) UnmarshalBinary(data []byte) error {
	var state boosterState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	obj, err := objectiveFor(state.Params.Objective)
	if err != nil {
		return err
	}
	b.Params = state.Params
	b.BaseMargin = state.BaseMargin
	b.NumFeatures = state.NumFeatures
	b.Trees = state.Trees
	b.obj = obj
	return nil
}

// Save writes the booster to path.
func (b *Booster) Save(path string) error {
	raw, err := b.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode booster: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// LoadBooster reads a booster written by Save.
func LoadBooster(path string) (*Booster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b := &Booster{}
	if err := b.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("decode booster %s: %w", path, err)
	}
	return b, nil
}
