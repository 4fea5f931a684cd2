// Package classifier holds the stage models (linear weights or ONNX) and the
// Stage-2 fallacy classifier with its confidence floor.
package classifier

// Kind names a stage model family.
type Kind string

const (
	KindLogistic  Kind = "logistic"
	KindLinearSVC Kind = "linear_svc"
	KindONNX      Kind = "onnx"
)

// SentinelConfidence is reported by models that cannot produce a calibrated
// posterior.
const SentinelConfidence = 1.0

// Prediction is a model's decision for one feature vector.
type Prediction struct {
	Label      string
	Confidence float64
}

// Model is an immutable, loaded stage model.
type Model interface {
	// Classes returns the output labels in score order.
	Classes() []string
	// Width returns the feature vector length the model was fitted on.
	Width() int
	// Probabilistic reports whether Confidence is a calibrated posterior.
	Probabilistic() bool
	// Predict scores one feature vector.
	Predict(vec []float64) (Prediction, error)
}
