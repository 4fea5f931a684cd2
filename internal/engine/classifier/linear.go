package classifier

import (
	"errors"
	"fmt"
)

// ErrWidth is returned when a feature vector's length disagrees with the
// model.
var ErrWidth = errors.New("feature vector width mismatch")

// Linear is a fitted linear model: one weight row per class, or a single row
// for binary problems where a positive decision selects Classes()[1].
type Linear struct {
	kind        Kind
	classes     []string
	coef        []float64 // row-major [rows, width]
	intercept   []float64
	rows        int
	width       int
	calibration *Platt
}

// NewLinear validates and builds a linear model. Calibration is only
// meaningful for binary linear_svc models.
func NewLinear(kind Kind, classes []string, coef [][]float64, intercept []float64, cal *Platt) (*Linear, error) {
	if kind != KindLogistic && kind != KindLinearSVC {
		return nil, fmt.Errorf("classifier: unsupported linear kind %q", kind)
	}
	if len(classes) < 2 {
		return nil, fmt.Errorf("classifier: need at least 2 classes, got %d", len(classes))
	}
	wantRows := len(classes)
	if len(classes) == 2 {
		wantRows = 1
	}
	if len(coef) != wantRows {
		return nil, fmt.Errorf("classifier: %d classes need %d weight rows, got %d", len(classes), wantRows, len(coef))
	}
	if len(intercept) != wantRows {
		return nil, fmt.Errorf("classifier: intercept length %d, want %d", len(intercept), wantRows)
	}
	if cal != nil && wantRows != 1 {
		return nil, fmt.Errorf("classifier: calibration requires a binary model")
	}

	width := len(coef[0])
	if width == 0 {
		return nil, fmt.Errorf("classifier: empty weight row")
	}
	flat := make([]float64, 0, wantRows*width)
	for i, row := range coef {
		if len(row) != width {
			return nil, fmt.Errorf("classifier: weight row %d has width %d, want %d", i, len(row), width)
		}
		flat = append(flat, row...)
	}

	return &Linear{
		kind:        kind,
		classes:     append([]string(nil), classes...),
		coef:        flat,
		intercept:   append([]float64(nil), intercept...),
		rows:        wantRows,
		width:       width,
		calibration: cal,
	}, nil
}

// LoadLinear reads "coef" [rows, width] and "intercept" [rows] tensors from a
// safetensors file.
func LoadLinear(path string, kind Kind, classes []string, cal *Platt) (*Linear, error) {
	ts, err := loadTensors(path, "coef", "intercept")
	if err != nil {
		return nil, err
	}
	c, b := ts["coef"], ts["intercept"]
	if len(c.shape) != 2 {
		return nil, fmt.Errorf("weights: expected 2D coef tensor, got shape %v", c.shape)
	}
	rows, width := c.shape[0], c.shape[1]
	coef := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		row := make([]float64, width)
		for j, w := range c.data[r*width : (r+1)*width] {
			row[j] = float64(w)
		}
		coef[r] = row
	}
	intercept := make([]float64, len(b.data))
	for i, w := range b.data {
		intercept[i] = float64(w)
	}
	return NewLinear(kind, classes, coef, intercept, cal)
}

func (m *Linear) Classes() []string { return m.classes }

func (m *Linear) Width() int { return m.width }

func (m *Linear) Probabilistic() bool {
	return m.kind == KindLogistic || m.calibration != nil
}

// decisions returns w·x + b for every weight row.
func (m *Linear) decisions(vec []float64) []float64 {
	out := make([]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		row := m.coef[r*m.width : (r+1)*m.width]
		sum := m.intercept[r]
		for j, w := range row {
			if x := vec[j]; x != 0 {
				sum += w * x
			}
		}
		out[r] = sum
	}
	return out
}

// Predict scores vec. Confidence is the posterior of the predicted class, or
// SentinelConfidence for an uncalibrated linear_svc.
func (m *Linear) Predict(vec []float64) (Prediction, error) {
	if len(vec) != m.width {
		return Prediction{}, fmt.Errorf("classifier: %w: got %d, model expects %d", ErrWidth, len(vec), m.width)
	}
	d := m.decisions(vec)

	if m.rows == 1 {
		var p1 float64
		switch {
		case m.kind == KindLogistic:
			p1 = sigmoid(d[0])
		case m.calibration != nil:
			p1 = m.calibration.Probability(d[0])
		default:
			idx := 0
			if d[0] > 0 {
				idx = 1
			}
			return Prediction{Label: m.classes[idx], Confidence: SentinelConfidence}, nil
		}
		idx := 0
		if p1 > 0.5 {
			idx = 1
		}
		conf := p1
		if idx == 0 {
			conf = 1 - p1
		}
		return Prediction{Label: m.classes[idx], Confidence: conf}, nil
	}

	idx := argmax(d)
	if m.kind == KindLogistic {
		p := softmax(d)
		return Prediction{Label: m.classes[idx], Confidence: p[idx]}, nil
	}
	return Prediction{Label: m.classes[idx], Confidence: SentinelConfidence}, nil
}
