// Package gatekeeper detects logical fallacies in short English text with a
// two-stage classifier: a gate that decides whether a sentence contains a
// fallacy, then a multi-class model that names it.
//
// Quick start:
//
//	g, err := gatekeeper.New(gatekeeper.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	r, _ := g.Classify("Either we ban cars entirely or cities will collapse.")
//	fmt.Println(r.Fallacy, r.Confidence, r.Title)
//
// When the model directory holds no trained artifacts, New falls back to a
// rule-based detector and every result carries a Warning. Disable this with
// WithFallback(false) to get an error instead.
//
// A Gatekeeper is safe for concurrent use. Create once, reuse across
// requests.
package gatekeeper
