package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/crimson-sun/gatekeeper/internal/model"
)

// mockOutput records calls for test assertions.
type mockOutput struct {
	results []model.Result
	closed  bool
	err     error // if set, Write and Close return this error
}

func (m *mockOutput) Write(_ context.Context, r model.Result) error {
	m.results = append(m.results, r)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func testResult() model.Result {
	return model.Result{Sentence: "There are only two options here.", Fallacy: model.FalseDilemma, Confidence: 0.89}
}

func TestFanOutDeliversToAll(t *testing.T) {
	a, b, c := &mockOutput{}, &mockOutput{}, &mockOutput{}
	m := New(a, b, c)

	if err := m.Write(context.Background(), testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, out := range []*mockOutput{a, b, c} {
		if len(out.results) != 1 {
			t.Errorf("output %d received %d results, want 1", i, len(out.results))
		}
	}
}

func TestFailingOutputDoesNotBlockOthers(t *testing.T) {
	boom := errors.New("boom")
	a := &mockOutput{err: boom}
	b := &mockOutput{}
	m := New(a, b)

	err := m.Write(context.Background(), testResult())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(b.results) != 1 {
		t.Error("second output missed the result")
	}
}

func TestCloseClosesAll(t *testing.T) {
	boom := errors.New("close failed")
	a := &mockOutput{err: boom}
	b := &mockOutput{}
	m := New(a, nil, b)

	if err := m.Close(); !errors.Is(err, boom) {
		t.Fatalf("expected close error, got %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("not every output was closed")
	}
}

func TestEmptyMulti(t *testing.T) {
	m := New()
	if err := m.Write(context.Background(), testResult()); err != nil {
		t.Errorf("Write on empty Multi: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close on empty Multi: %v", err)
	}
}
