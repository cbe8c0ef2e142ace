// Package serving is the hosted side of the endpoint: the model-loading,
// request-parsing, prediction and response-encoding callbacks, and the HTTP
// container contract (GET /ping, POST /invocations) that drives them.
package serving

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/DebasishMaji/ecommerce-personalization/pkg/data"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/model"
)

// ModelFile is the artifact name inside the model directory.
const ModelFile = "model.bin"

// ModelFn loads the booster from modelDir.
func ModelFn(modelDir string) (*model.Booster, error) {
	return model.LoadBooster(filepath.Join(modelDir, ModelFile))
}

// InputFn parses a header-less CSV request body into a feature matrix.
// Empty cells become NaN. The content type is accepted as given.
func InputFn(body string, contentType string) (*mat.Dense, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	rows, err := data.ParseRecords(records)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("serving: empty request body")
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	m := mat.NewDense(len(rows), width, nil)
	for i, r := range rows {
		for j := 0; j < width; j++ {
			if j < len(r) {
				m.Set(i, j, r[j])
			} else {
				m.Set(i, j, math.NaN())
			}
		}
	}
	return m, nil
}

// PredictFn runs the booster over every row of input.
func PredictFn(input mat.Matrix, booster *model.Booster) []float64 {
	return booster.PredictMatrix(input)
}

// predictionBody is the JSON response shape.
type predictionBody struct {
	Predictions []float64 `json:"predictions"`
}

// OutputFn encodes predictions as {"predictions": [...]}.
func OutputFn(predictions []float64, accept string) ([]byte, string, error) {
	if predictions == nil {
		predictions = []float64{}
	}
	raw, err := json.Marshal(predictionBody{Predictions: predictions})
	if err != nil {
		return nil, "", err
	}
	return raw, "application/json", nil
}
