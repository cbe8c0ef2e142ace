package model

import "math"

func MSE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / n
}

func MAE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		if d < 0 {
			d = -d
		}
		s += d
	}
	return s / n
}

func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// LogLoss is the mean binary cross-entropy of probabilities against 0/1 labels.
func LogLoss(yTrue, yPred []float64) float64 {
	n := len(yTrue)
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yPred[i], 1e-15), 1-1e-15)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return s / float64(n)
}

func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	ssTot := 0.0
	ssRes := 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func BinaryPredFromProba(proba []float64, threshold float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= threshold {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	return out
}

// Accuracy of binary predictions against labels rounded to 0/1.
func Accuracy(yTrue []float64, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if int(math.Round(yTrue[i])) == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}
