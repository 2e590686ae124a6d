// Command import_cards normalizes a raw card database export into the
// cards.json file the server loads at startup. It decodes the export,
// rejects duplicate ids, and writes the normalized set.
//
// Usage: go run scripts/import_cards.go -in export.json -out data/cards.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

func main() {
	in := flag.String("in", "", "path to the raw card database export")
	out := flag.String("out", "data/cards.json", "path to write the normalized card set")
	flag.Parse()

	if *in == "" {
		log.Fatal("missing -in path")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read export: %v", err)
	}

	cards, err := carddef.DecodeCards(data)
	if err != nil {
		log.Fatalf("decode export: %v", err)
	}
	if len(cards) == 0 {
		log.Fatal("export contains no usable cards")
	}

	seen := make(map[string]bool, len(cards))
	byKind := make(map[carddef.Kind]int)
	for _, c := range cards {
		if c.ID == "" {
			log.Fatalf("card %q has no id", c.Name)
		}
		if seen[c.ID] {
			log.Fatalf("duplicate card id %s", c.ID)
		}
		seen[c.ID] = true
		byKind[c.Kind]++
	}

	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}
	encoded, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		log.Fatalf("encode card set: %v", err)
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}

	fmt.Printf("imported %d cards to %s\n", len(cards), *out)
	for _, kind := range []carddef.Kind{
		carddef.KindUnit, carddef.KindSpell, carddef.KindGear,
		carddef.KindRune, carddef.KindBattlefield, carddef.KindLegend,
	} {
		if n := byKind[kind]; n > 0 {
			fmt.Printf("  %-12s %d\n", kind, n)
		}
	}
}
