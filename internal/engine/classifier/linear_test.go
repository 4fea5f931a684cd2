package classifier

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLinearBinaryLogistic(t *testing.T) {
	m, err := NewLinear(KindLogistic, []string{"fallacy", "no_fallacy"},
		[][]float64{{2, -1}}, []float64{0.5}, nil)
	if err != nil {
		t.Fatalf("NewLinear() error: %v", err)
	}
	if !m.Probabilistic() {
		t.Error("logistic model should be probabilistic")
	}

	// d = 2*1 - 1*0 + 0.5 = 2.5 > 0 → classes[1].
	p, err := m.Predict([]float64{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := 1 / (1 + math.Exp(-2.5))
	if p.Label != "no_fallacy" || math.Abs(p.Confidence-want) > 1e-12 {
		t.Errorf("Predict = %+v, want no_fallacy at %v", p, want)
	}

	// d = -1*3 + 0.5 = -2.5 → classes[0] with the complementary posterior.
	p, err = m.Predict([]float64{0, 3})
	if err != nil {
		t.Fatal(err)
	}
	if p.Label != "fallacy" || math.Abs(p.Confidence-want) > 1e-12 {
		t.Errorf("Predict = %+v, want fallacy at %v", p, want)
	}
}

func TestLinearSVCSentinel(t *testing.T) {
	m, err := NewLinear(KindLinearSVC, []string{"fallacy", "no_fallacy"},
		[][]float64{{1}}, []float64{-0.2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Probabilistic() {
		t.Error("uncalibrated svc should not be probabilistic")
	}
	p, err := m.Predict([]float64{0.1})
	if err != nil {
		t.Fatal(err)
	}
	if p.Label != "fallacy" || p.Confidence != SentinelConfidence {
		t.Errorf("Predict = %+v, want fallacy at sentinel", p)
	}
}

func TestLinearSVCPlatt(t *testing.T) {
	cal := &Platt{A: -2, B: 0}
	m, err := NewLinear(KindLinearSVC, []string{"fallacy", "no_fallacy"},
		[][]float64{{1}}, []float64{0}, cal)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Probabilistic() {
		t.Error("calibrated svc should be probabilistic")
	}
	p, err := m.Predict([]float64{1})
	if err != nil {
		t.Fatal(err)
	}
	want := 1 / (1 + math.Exp(-2))
	if p.Label != "no_fallacy" || math.Abs(p.Confidence-want) > 1e-12 {
		t.Errorf("Predict = %+v, want no_fallacy at %v", p, want)
	}
}

func TestLinearMulticlassSoftmax(t *testing.T) {
	classes := []string{"ad_hominem", "false_dilemma", "slippery_slope", "strawman"}
	coef := [][]float64{{1, 0}, {0, 1}, {0, 0}, {-1, 0}}
	m, err := NewLinear(KindLogistic, classes, coef, []float64{0, 0, 0, 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := m.Predict([]float64{0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if p.Label != "false_dilemma" {
		t.Errorf("Label = %q, want false_dilemma", p.Label)
	}
	want := math.Exp(2) / (math.Exp(2) + 3)
	if math.Abs(p.Confidence-want) > 1e-12 {
		t.Errorf("Confidence = %v, want %v", p.Confidence, want)
	}
}

func TestLinearWidthMismatch(t *testing.T) {
	m, err := NewLinear(KindLogistic, []string{"a", "b"}, [][]float64{{1, 2}}, []float64{0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Predict([]float64{1})
	if !errors.Is(err, ErrWidth) {
		t.Fatalf("expected ErrWidth, got %v", err)
	}
}

func TestNewLinearValidation(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		classes   []string
		coef      [][]float64
		intercept []float64
		cal       *Platt
	}{
		{"bad kind", Kind("tree"), []string{"a", "b"}, [][]float64{{1}}, []float64{0}, nil},
		{"one class", KindLogistic, []string{"a"}, [][]float64{{1}}, []float64{0}, nil},
		{"binary two rows", KindLogistic, []string{"a", "b"}, [][]float64{{1}, {1}}, []float64{0, 0}, nil},
		{"ragged", KindLogistic, []string{"a", "b", "c"}, [][]float64{{1}, {1, 2}, {1}}, []float64{0, 0, 0}, nil},
		{"intercept", KindLogistic, []string{"a", "b"}, [][]float64{{1}}, nil, nil},
		{"multiclass calibration", KindLinearSVC, []string{"a", "b", "c"}, [][]float64{{1}, {1}, {1}}, []float64{0, 0, 0}, &Platt{}},
	}
	for _, tt := range tests {
		if _, err := NewLinear(tt.kind, tt.classes, tt.coef, tt.intercept, tt.cal); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

// writeSafetensors writes F32 tensors in safetensors layout.
func writeSafetensors(t *testing.T, path string, tensors map[string]struct {
	shape []int
	data  []float32
}, order []string) {
	t.Helper()
	header := map[string]any{}
	var payload []byte
	for _, name := range order {
		ts := tensors[name]
		start := len(payload)
		for _, f := range ts.data {
			payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(f))
		}
		header[name] = map[string]any{
			"dtype":        "F32",
			"shape":        ts.shape,
			"data_offsets": []int{start, len(payload)},
		}
	}
	hdr, err := json.Marshal(header)
	if err != nil {
		t.Fatal(err)
	}
	buf := binary.LittleEndian.AppendUint64(nil, uint64(len(hdr)))
	buf = append(buf, hdr...)
	buf = append(buf, payload...)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLinear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage2.safetensors")
	writeSafetensors(t, path, map[string]struct {
		shape []int
		data  []float32
	}{
		"coef":      {shape: []int{3, 2}, data: []float32{1, 0, 0, 1, -1, -1}},
		"intercept": {shape: []int{3}, data: []float32{0, 0, 0.5}},
	}, []string{"coef", "intercept"})

	m, err := LoadLinear(path, KindLogistic, []string{"a", "b", "c"}, nil)
	if err != nil {
		t.Fatalf("LoadLinear() error: %v", err)
	}
	if m.Width() != 2 {
		t.Errorf("Width() = %d, want 2", m.Width())
	}
	p, err := m.Predict([]float64{3, 0})
	if err != nil {
		t.Fatal(err)
	}
	if p.Label != "a" {
		t.Errorf("Label = %q, want a", p.Label)
	}
}

func TestLoadLinearMissingTensor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.safetensors")
	writeSafetensors(t, path, map[string]struct {
		shape []int
		data  []float32
	}{
		"coef": {shape: []int{1, 1}, data: []float32{1}},
	}, []string{"coef"})

	if _, err := LoadLinear(path, KindLogistic, []string{"a", "b"}, nil); err == nil {
		t.Fatal("expected error for missing intercept tensor")
	}
}

func TestLoadLinearMissingFile(t *testing.T) {
	_, err := LoadLinear("/nonexistent/weights.safetensors", KindLogistic, []string{"a", "b"}, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadLinearCorruptFile(t *testing.T) {
	rawFile := func(headerLen uint64, header string, payload int) []byte {
		buf := binary.LittleEndian.AppendUint64(nil, headerLen)
		buf = append(buf, header...)
		return append(buf, make([]byte, payload)...)
	}
	withHeader := func(header string, payload int) []byte {
		return rawFile(uint64(len(header)), header, payload)
	}
	intercept := `"intercept":{"dtype":"F32","shape":[1],"data_offsets":[4,8]}`

	tests := []struct {
		name string
		data []byte
	}{
		{"header length wraps", rawFile(^uint64(0)-6, "{}", 0)},
		{"header length past end", rawFile(64, "{}", 0)},
		{"negative shape", withHeader(`{"coef":{"dtype":"F32","shape":[-1,-1],"data_offsets":[0,4]},`+intercept+`}`, 8)},
		{"shape overflows", withHeader(`{"coef":{"dtype":"F32","shape":[4294967296,4294967296],"data_offsets":[0,4]},`+intercept+`}`, 8)},
		{"reversed offsets", withHeader(`{"coef":{"dtype":"F32","shape":[1,1],"data_offsets":[4,0]},`+intercept+`}`, 8)},
		{"negative offset", withHeader(`{"coef":{"dtype":"F32","shape":[1,1],"data_offsets":[-4,0]},`+intercept+`}`, 8)},
		{"offsets past end", withHeader(`{"coef":{"dtype":"F32","shape":[1,1],"data_offsets":[8,12]},`+intercept+`}`, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "corrupt.safetensors")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadLinear(path, KindLogistic, []string{"a", "b"}, nil); err == nil {
				t.Fatal("expected error for corrupt weights file")
			}
		})
	}
}
