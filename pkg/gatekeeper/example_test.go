package gatekeeper_test

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/crimson-sun/gatekeeper/internal/engine/testdata"
	"github.com/crimson-sun/gatekeeper/pkg/gatekeeper"
)

func Example() {
	dir, err := os.MkdirTemp("", "gatekeeper-models")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	if err := testdata.WriteModels(dir); err != nil {
		log.Fatal(err)
	}

	g, err := gatekeeper.New(gatekeeper.WithModelDir(dir), gatekeeper.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	r, err := g.Classify("You are an idiot, that's why you're wrong.")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s %.2f %s\n", r.Fallacy, r.Confidence, r.Mode)
	// Output:
	// ad_hominem 0.96 model
}

func Example_rules() {
	dir, err := os.MkdirTemp("", "gatekeeper-empty")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	g, err := gatekeeper.New(gatekeeper.WithModelDir(dir), gatekeeper.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	r, _ := g.Classify("Either we ban cars entirely or cities will collapse.")
	fmt.Println(r.Fallacy, r.Mode)
	fmt.Println(r.Matches[0].Fallacy)
	// Output:
	// false_dilemma rules
	// false dilemma
}
