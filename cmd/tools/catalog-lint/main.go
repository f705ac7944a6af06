// cmd/tools/catalog-lint/main.go
//
// catalog-lint validates a catalog definition file before it is loaded into
// the database: question weight floors per template and weight distribution
// rules per group. Exits non-zero when any check fails.
//
// Usage: catalog-lint -file catalog.json
package main

import (
	"flag"
	"fmt"
	"os"

	"checklist-engine/internal/engine/weights"
	"checklist-engine/pkg/catalogfile"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "catalog.json", "path to the catalog definition file")
	flag.Parse()

	cat, err := catalogfile.Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog-lint: %v\n", err)
		os.Exit(1)
	}

	failures := 0
	report := func(scope, id string, err error) {
		failures++
		fmt.Fprintf(os.Stderr, "FAIL %s %s: %v\n", scope, id, err)
	}

	known := cat.TemplateIndex()

	for i := range cat.Templates {
		t := &cat.Templates[i]
		if err := weights.ValidateTemplate(t.ToModel()); err != nil {
			report("template", t.ID, err)
		}
	}

	for i := range cat.Groups {
		g := &cat.Groups[i]
		if err := weights.ValidateGroupWeights(g.TemplateIDs, g.TemplateWeights, known); err != nil {
			report("group", g.ID, err)
		}
	}

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "catalog-lint: %d check(s) failed in %s\n", failures, file)
		os.Exit(1)
	}

	fmt.Printf("catalog-lint: %s OK (%d templates, %d groups)\n", file, len(cat.Templates), len(cat.Groups))
}
