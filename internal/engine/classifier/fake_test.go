package classifier

// fakeModel returns a fixed prediction and counts calls.
type fakeModel struct {
	classes []string
	width   int
	pred    Prediction
	err     error
	calls   int
}

func (f *fakeModel) Classes() []string { return f.classes }
func (f *fakeModel) Width() int { return f.width }
func (f *fakeModel) Probabilistic() bool { return true }

func (f *fakeModel) Predict(vec []float64) (Prediction, error) {
	f.calls++
	return f.pred, f.err
}
