package classifier

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// DefaultONNXOutput is the float score tensor name emitted by linear
// classifier exports with the zipmap disabled.
const DefaultONNXOutput = "probabilities"

// ONNX is a stage model exported to ONNX: one float input [batch, width],
// one float score output [batch, classes].
type ONNX struct {
	session       *ort.DynamicAdvancedSession
	inputName     string
	outputName    string
	classes       []string
	width         int
	probabilistic bool
}

// LoadONNX opens an ONNX stage model. The runtime shared library is expected
// next to the model file. When probabilistic is false the scores are treated
// as decision values and Confidence is SentinelConfidence.
func LoadONNX(modelPath, outputName string, classes []string, probabilistic bool) (*ONNX, error) {
	if outputName == "" {
		outputName = DefaultONNXOutput
	}
	libPath := filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected a single input tensor, got %d", len(inputs))
	}
	inDims := inputs[0].Dimensions
	if len(inDims) != 2 || inDims[1] <= 0 {
		return nil, fmt.Errorf("onnx: expected input shape [batch, width], got %v", inDims)
	}

	var found bool
	for _, out := range outputs {
		if out.Name != outputName {
			continue
		}
		found = true
		dims := out.Dimensions
		if len(dims) != 2 {
			return nil, fmt.Errorf("onnx: expected 2D output %q, got %v", outputName, dims)
		}
		if dims[1] > 0 && int(dims[1]) != len(classes) {
			return nil, fmt.Errorf("onnx: output %q has %d classes, manifest lists %d", outputName, dims[1], len(classes))
		}
	}
	if !found {
		return nil, fmt.Errorf("onnx: model has no output %q", outputName)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputName},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &ONNX{
		session:       session,
		inputName:     inputs[0].Name,
		outputName:    outputName,
		classes:       append([]string(nil), classes...),
		width:         int(inDims[1]),
		probabilistic: probabilistic,
	}, nil
}

func (m *ONNX) Classes() []string { return m.classes }

func (m *ONNX) Width() int { return m.width }

func (m *ONNX) Probabilistic() bool { return m.probabilistic }

// Predict runs a single inference call for one vector.
func (m *ONNX) Predict(vec []float64) (Prediction, error) {
	if len(vec) != m.width {
		return Prediction{}, fmt.Errorf("classifier: %w: got %d, model expects %d", ErrWidth, len(vec), m.width)
	}

	input := make([]float32, len(vec))
	for i, x := range vec {
		input[i] = float32(x)
	}
	tIn, err := ort.NewTensor(ort.NewShape(1, int64(m.width)), input)
	if err != nil {
		return Prediction{}, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(m.classes))))
	if err != nil {
		return Prediction{}, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := m.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return Prediction{}, fmt.Errorf("onnx: inference failed: %w", err)
	}

	// Copy data out before tensor is destroyed.
	src := tOut.GetData()
	scores := make([]float64, len(src))
	for i, s := range src {
		scores[i] = float64(s)
	}

	idx := argmax(scores)
	conf := SentinelConfidence
	if m.probabilistic {
		conf = scores[idx]
	}
	return Prediction{Label: m.classes[idx], Confidence: conf}, nil
}

// Close releases the ONNX session resources.
func (m *ONNX) Close() error {
	return m.session.Destroy()
}
