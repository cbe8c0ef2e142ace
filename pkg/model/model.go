package model

// Predictor maps feature rows to predictions.
type Predictor interface {
	Predict(X [][]float64) []float64
}

// Regressor is a supervised model trained against a held-out evaluation set.
type Regressor interface {
	Predictor
	Train(X [][]float64, y []float64, evalX [][]float64, evalY []float64) (History, error)
}

// History is the per-round value of the evaluation metric.
type History struct {
	Metric string
	Values []float64
}

// Last returns the final recorded metric value, or 0 when empty.
func (h History) Last() float64 {
	if len(h.Values) == 0 {
		return 0
	}
	return h.Values[len(h.Values)-1]
}
