package classifier

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// tensor is a dense F32 tensor read from a safetensors file.
type tensor struct {
	shape []int
	data  []float32
}

// loadTensors reads the named F32 tensors from a safetensors file. Every
// requested name must be present.
func loadTensors(path string, names ...string) (map[string]tensor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("weights: file too small: %d bytes", len(data))
	}

	// Parse safetensors header: 8-byte LE uint64 header length, then JSON.
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > uint64(len(data)-8) {
		return nil, fmt.Errorf("weights: header length %d exceeds file size", headerLen)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("weights: failed to parse header: %w", err)
	}

	base := 8 + int(headerLen)
	avail := len(data) - base
	out := make(map[string]tensor, len(names))
	for _, name := range names {
		raw, ok := header[name]
		if !ok {
			return nil, fmt.Errorf("weights: tensor %q not found in header", name)
		}

		var meta struct {
			Dtype       string `json:"dtype"`
			Shape       []int  `json:"shape"`
			DataOffsets [2]int `json:"data_offsets"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("weights: failed to parse %q metadata: %w", name, err)
		}
		if meta.Dtype != "F32" {
			return nil, fmt.Errorf("weights: %q: expected dtype F32, got %s", name, meta.Dtype)
		}

		lo, hi := meta.DataOffsets[0], meta.DataOffsets[1]
		if lo < 0 || hi < lo || hi > avail {
			return nil, fmt.Errorf("weights: %q: data range [%d:%d] exceeds file size %d", name, lo, hi, len(data))
		}

		// The product is bounded by the available floats, so it cannot overflow.
		maxFloats := avail / 4
		numFloats := 1
		for _, d := range meta.Shape {
			if d < 0 {
				return nil, fmt.Errorf("weights: %q: negative dimension in shape %v", name, meta.Shape)
			}
			if d != 0 && numFloats > maxFloats/d {
				return nil, fmt.Errorf("weights: %q: shape %v exceeds file size %d", name, meta.Shape, len(data))
			}
			numFloats *= d
		}
		if hi-lo != numFloats*4 {
			return nil, fmt.Errorf("weights: %q: data size %d doesn't match shape %v", name, hi-lo, meta.Shape)
		}
		start := base + lo

		vals := make([]float32, numFloats)
		for i := range vals {
			bits := binary.LittleEndian.Uint32(data[start+i*4 : start+i*4+4])
			vals[i] = math.Float32frombits(bits)
		}
		out[name] = tensor{shape: meta.Shape, data: vals}
	}
	return out, nil
}
