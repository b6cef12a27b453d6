// Command gen is the offline catalog generator referenced by spec.md §9's
// design note: given a provider's models-listing JSON fixture, it emits a
// Go source file defining that provider's wire-id table, verifying no two
// wire ids collide under modelcatalog.EncodeVariantName before emitting,
// the Go analogue of
// original_source/biscuit/src/bin/update-provider-models.rs and its
// syntax-validation step in
// original_source/biscuit/src/codegen/validation.rs (which used syn's
// parser; this generator uses go/format, the idiomatic equivalent for
// validating emitted Go source).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"go/format"
	"os"
	"sort"
	"strings"
	"text/template"

	"llmpipe/modelcatalog"
)

// listing is the shape of a provider's models-listing fixture: an object
// naming the provider and holding a flat array of the wire ids that
// GET /v1/models (or the provider's equivalent endpoint) returned.
type listing struct {
	Provider string   `json:"provider"`
	WireIDs  []string `json:"wire_ids"`
}

const tmplSource = `// Code generated by modelcatalog/gen. DO NOT EDIT.

package modelcatalog

// {{.Provider}}WireIDs lists every model wire id known for this provider at
// generation time. Models absent from this list still resolve via Lookup,
// marked IsBespoke.
var {{.Provider}}WireIDs = []string{
{{- range .WireIDs}}
	{{printf "%q" .}},
{{- end}}
}
`

func main() {
	inPath := flag.String("in", "", "path to a provider listing JSON fixture")
	outPath := flag.String("out", "", "path to write the generated Go source")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gen -in listing.json -out generated.go")
		os.Exit(2)
	}

	if err := run(*inPath, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, "gen:", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string) error {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	if err := checkNoCollisions(l.WireIDs); err != nil {
		return err
	}

	sorted := append([]string(nil), l.WireIDs...)
	sort.Strings(sorted)

	tmpl, err := template.New("gen").Parse(tmplSource)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, struct {
		Provider string
		WireIDs  []string
	}{
		Provider: toExportedName(l.Provider),
		WireIDs:  sorted,
	}); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	formatted, err := format.Source([]byte(buf.String()))
	if err != nil {
		return fmt.Errorf("generated source is not valid Go: %w", err)
	}

	return os.WriteFile(outPath, formatted, 0o644)
}

// checkNoCollisions verifies no two distinct wire ids encode to the same
// variant name, per spec.md §9's "must verify no two wire ids collide
// under encode... before emitting".
func checkNoCollisions(wireIDs []string) error {
	seen := make(map[string]string, len(wireIDs))
	for _, id := range wireIDs {
		variant := modelcatalog.EncodeVariantName(id)
		if prior, ok := seen[variant]; ok && prior != id {
			return fmt.Errorf("wire id collision: %q and %q both encode to variant %q", prior, id, variant)
		}
		seen[variant] = id
	}
	return nil
}

func toExportedName(provider string) string {
	if provider == "" {
		return "Unknown"
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}
