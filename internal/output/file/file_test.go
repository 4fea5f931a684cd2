package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/crimson-sun/gatekeeper/internal/model"
	"github.com/crimson-sun/gatekeeper/internal/output"
)

func testResult(label model.Label) model.Result {
	return model.Result{
		Sentence:    "Before you know it, everyone will quit.",
		Fallacy:     label,
		Confidence:  0.5,
		Title:       "No Fallacy Detected",
		Explanation: "No obvious logical fallacy detected.",
		Prompt:      "What assumptions does this argument rely on?",
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testResult(model.NoFallacy)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var r model.Result
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if r.Fallacy != model.NoFallacy {
			t.Errorf("line %d: fallacy = %q, want no_fallacy", i, r.Fallacy)
		}
	}
}

func TestAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	for i := 0; i < 2; i++ {
		out, err := New(path, output.Minimal)
		if err != nil {
			t.Fatal(err)
		}
		out.Write(context.Background(), testResult(model.Strawman))
		out.Close()
	}
	if lines := readLines(t, path); len(lines) != 2 {
		t.Errorf("got %d lines, want 2", len(lines))
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	// Each line is well over 100 bytes, so every write after the first rotates.
	out, err := New(path, output.Standard, WithMaxSize(100))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testResult(model.SlipperySlope)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
		t.Error("expected rotated file .1 to exist")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("current file stat error: %v", err)
	}
	if info.Size() == 0 {
		t.Error("current file is empty after rotation")
	}
}

func TestRotationDropsOldest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Minimal, WithMaxSize(10))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < maxBackups+5; i++ {
		if err := out.Write(context.Background(), testResult(model.AdHominem)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	if _, err := os.Stat(fmt.Sprintf("%s.%d", path, maxBackups)); err != nil {
		t.Errorf("expected backup .%d: %v", maxBackups, err)
	}
	if _, err := os.Stat(fmt.Sprintf("%s.%d", path, maxBackups+1)); !os.IsNotExist(err) {
		t.Errorf("backup .%d should not exist", maxBackups+1)
	}
}

func TestFlushWithoutClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Standard)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	out.Write(context.Background(), testResult(model.NoFallacy))
	if err := out.Flush(); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); len(data) == 0 {
		t.Error("Flush did not write buffered data")
	}
}

func TestVerbosityMinimalStripsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Minimal)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Write(context.Background(), testResult(model.NoFallacy))
	out.Close()

	var m map[string]any
	json.Unmarshal([]byte(readLines(t, path)[0]), &m)
	if _, ok := m["prompt"]; ok {
		t.Error("Minimal verbosity should strip 'prompt'")
	}
	if _, ok := m["confidence"]; !ok {
		t.Error("Minimal verbosity should keep 'confidence'")
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Write(context.Background(), testResult(model.FalseDilemma))
		}()
	}
	wg.Wait()
	out.Close()

	if lines := readLines(t, path); len(lines) != 50 {
		t.Errorf("got %d lines, want 50", len(lines))
	}
}

func TestFallaciesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Minimal, WithFallaciesOnly())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, l := range []model.Label{model.NoFallacy, model.SlipperySlope, model.NoFallacy, model.Strawman} {
		if err := out.Write(ctx, testResult(l)); err != nil {
			t.Fatal(err)
		}
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"slippery_slope"`) || !strings.Contains(lines[1], `"strawman"`) {
		t.Errorf("unexpected lines: %v", lines)
	}
}
