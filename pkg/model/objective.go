package model

import (
	"fmt"
	"math"
)

// Objective names understood by the booster.
const (
	BinaryLogistic   = "binary:logistic"
	RegSquaredError  = "reg:squarederror"
	probabilityClamp = 1e-7
)

// objective supplies the loss derivatives and link function for boosting.
type objective interface {
	// BaseMargin turns the mean label into the starting margin.
	BaseMargin(meanLabel float64) float64
	// Transform maps a raw margin to a prediction.
	Transform(margin float64) float64
	// Gradient returns d loss / d margin and its second derivative.
	Gradient(pred, label float64) (g, h float64)
	// EvalMetric names the per-round validation metric.
	EvalMetric() string
	// Eval scores predictions against labels.
	Eval(yTrue, yPred []float64) float64
	// CheckLabels rejects labels outside the objective's domain.
	CheckLabels(y []float64) error
}

func objectiveFor(name string) (objective, error) {
	switch name {
	case BinaryLogistic, "":
		return logistic{}, nil
	case RegSquaredError, "reg:linear":
		return squaredError{}, nil
	default:
		return nil, fmt.Errorf("model: unknown objective %q", name)
	}
}

// Sigmoid is the logistic link.
func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

// Logit is the inverse of Sigmoid.
func Logit(p float64) float64 { return math.Log(p / (1 - p)) }

// logistic is binary cross-entropy on a sigmoid link.
type logistic struct{}

func (logistic) BaseMargin(mean float64) float64 {
	p := math.Min(math.Max(mean, probabilityClamp), 1-probabilityClamp)
	return Logit(p)
}

func (logistic) Transform(margin float64) float64 { return Sigmoid(margin) }

func (logistic) Gradient(pred, label float64) (float64, float64) {
	h := pred * (1 - pred)
	if h < 1e-16 {
		h = 1e-16
	}
	return pred - label, h
}

func (logistic) EvalMetric() string { return "logloss" }

func (logistic) Eval(yTrue, yPred []float64) float64 { return LogLoss(yTrue, yPred) }

func (logistic) CheckLabels(y []float64) error {
	for i, v := range y {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("label must be in [0,1] for logistic regression, got %v at row %d", v, i)
		}
	}
	return nil
}

// squaredError is plain least squares on the identity link.
type squaredError struct{}

func (squaredError) BaseMargin(mean float64) float64 { return mean }

func (squaredError) Transform(margin float64) float64 { return margin }

func (squaredError) Gradient(pred, label float64) (float64, float64) { return pred - label, 1 }

func (squaredError) EvalMetric() string { return "rmse" }

func (squaredError) Eval(yTrue, yPred []float64) float64 { return RMSE(yTrue, yPred) }

func (squaredError) CheckLabels([]float64) error { return nil }
