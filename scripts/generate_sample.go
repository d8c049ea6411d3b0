// Command generate_sample writes deterministic sample entries as NDJSON for
// `quire import --file`:
//
//	go run ./scripts/generate_sample.go -n 500 > sample.ndjson
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"strings"

	"github.com/mithrel/quire/pkg/api"
)

var topics = []string{"garden", "reading", "running", "cooking", "travel", "work", "music", "weather"}

func main() {
	total := flag.Int("n", 500, "number of entries")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	mr := mrand.New(mrand.NewSource(*seed))
	enc := json.NewEncoder(os.Stdout)
	for i := 0; i < *total; i++ {
		topic := topics[mr.Intn(len(topics))]
		e := api.Entry{
			Title:     fmt.Sprintf("Sample %03d: %s", i+1, topic),
			ContentMD: sampleBody(mr, i+1, topic),
		}
		if err := enc.Encode(e); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// sampleBody mixes the Markdown features the renderer handles.
func sampleBody(r *mrand.Rand, n int, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Notes on %s\n\nEntry number **%d**, written on a *quiet* day.\n\n", topic, n)
	switch r.Intn(4) {
	case 0:
		b.WriteString("- first thing\n- second thing\n- third thing\n")
	case 1:
		fmt.Fprintf(&b, "| item | count |\n|---|---|\n| %s | %d |\n", topic, r.Intn(20))
	case 2:
		b.WriteString("```\nlog --since yesterday\n```\n")
	default:
		fmt.Fprintf(&b, "More at https://example.com/%s/%d\n", topic, n)
	}
	return b.String()
}
