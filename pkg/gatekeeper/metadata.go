package gatekeeper

// Fallacy describes one label the classifier can return.
type Fallacy struct {
	Label       string // e.g. "slippery_slope"
	Title       string
	Explanation string
	Prompt      string // question that invites the reader to check the argument
}

// Metadata returns every label with its metadata, in table order and with
// no_fallacy included. The returned slice is a copy.
func (g *Gatekeeper) Metadata() []Fallacy {
	entries := g.svc.Metadata()
	out := make([]Fallacy, len(entries))
	for i, e := range entries {
		out[i] = Fallacy{
			Label:       string(e.Label),
			Title:       e.Title,
			Explanation: e.Explanation,
			Prompt:      e.Prompt,
		}
	}
	return out
}
