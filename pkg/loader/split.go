package loader

import (
	"math"
	"math/rand"
)

// TrainTestSplit splits X, Y into train and test sets by ratio. Rows are
// shuffled with a generator seeded by seed, so the same input and seed always
// give the same partition. The test set gets ceil(n*testRatio) rows.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, YTrain, YTest []float64) {
	n := len(X)
	indices := ShuffleIndices(n, seed)
	nTest := TestSize(n, testRatio)
	for i := 0; i < n; i++ {
		if i < nTest {
			XTest = append(XTest, X[indices[i]])
			YTest = append(YTest, Y[indices[i]])
		} else {
			XTrain = append(XTrain, X[indices[i]])
			YTrain = append(YTrain, Y[indices[i]])
		}
	}
	return
}

// TestSize is the number of rows held out for a given ratio.
func TestSize(n int, testRatio float64) int {
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest > n {
		nTest = n
	}
	if nTest < 0 {
		nTest = 0
	}
	return nTest
}

// ShuffleIndices returns the seeded permutation used by TrainTestSplit.
func ShuffleIndices(n int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(n)
}
