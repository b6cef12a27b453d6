package modelcatalog

import (
	"fmt"

	"llmpipe/provider"
)

// ModelVariant is the Go analogue of the original's generated per-provider
// enum (e.g. ProviderModelMoonshotAi), grounded on
// original_source/ai-pipeline/lib/src/rigging/providers/models/moonshotai.rs.
// Every known model is a named variant; anything absent from the catalog is
// represented with IsBespoke set and WireID holding the raw, uncatalogued id
// (the Rust enum's Bespoke(String) arm).
type ModelVariant struct {
	Provider provider.Provider
	WireID   string
	IsBespoke bool
}

// VariantName returns the encoded enum-style identifier for v, per spec.md
// §4.4.
func (v ModelVariant) VariantName() string {
	return EncodeVariantName(v.WireID)
}

func (v ModelVariant) String() string {
	return fmt.Sprintf("%s/%s", v.Provider, v.WireID)
}

// ModelDefinition describes a single catalogued model: its provider, its
// wire id as returned by the provider's models-listing endpoint, and the
// variant name that wire id encodes to. Definitions are the unit the
// catalog envelope (spec.md §6) persists to disk.
type ModelDefinition struct {
	Provider provider.Provider
	WireID   string
	Variant  string
}

// catalog is the static seed of known models per provider, grounded on the
// original's per-provider generated enums (moonshotai.rs, groq.rs, and the
// unchained-ai sibling mistral.rs/openai.rs). It is intentionally a small
// representative subset rather than the full generated list: new models are
// expected to arrive as Bespoke entries until the next catalog regeneration
// (modelcatalog/gen), matching spec.md §4.4's statement that the catalog is
// refreshed, not hand-maintained.
var catalog = map[provider.Provider][]string{
	provider.MoonshotAi: {
		"kimi-k2-0711-preview",
		"kimi-k2-0905-preview",
		"kimi-k2-thinking",
		"kimi-k2-thinking-turbo",
		"kimi-k2-turbo-preview",
		"kimi-latest",
		"moonshot-v1-128k",
		"moonshot-v1-32k",
		"moonshot-v1-8k",
		"moonshot-v1-auto",
	},
	provider.OpenAi: {
		"gpt-4o",
		"gpt-4.1",
		"gpt-4.1-mini",
		"gpt-4.1-nano",
		"gpt-5",
		"gpt-5-mini",
		"o3",
		"o3-mini",
		"whisper-1",
	},
	provider.Anthropic: {
		"claude-opus-4-5-20251101",
		"claude-sonnet-4-5-20250929",
		"claude-haiku-4-5-20251015",
	},
	provider.Groq: {
		"llama-3.3-70b-versatile",
		"whisper-large-v3-turbo",
		"mixtral-8x7b-32768",
	},
	provider.Mistral: {
		"mistral-large-latest",
		"mistral-small-latest",
		"codestral-latest",
	},
	provider.Gemini: {
		"gemini-2.5-pro",
		"gemini-2.5-flash",
	},
	provider.Xai: {
		"grok-4",
		"grok-4-fast",
	},
	provider.Deepseek: {
		"deepseek-chat",
		"deepseek-reasoner",
	},
}

// KnownModels returns the catalogued wire ids for p in declaration order.
func KnownModels(p provider.Provider) []string {
	ids := catalog[p]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Lookup resolves a provider + wire id pair to its ModelVariant, marking
// IsBespoke true when the wire id is not in the static catalog.
func Lookup(p provider.Provider, wireID string) ModelVariant {
	for _, known := range catalog[p] {
		if known == wireID {
			return ModelVariant{Provider: p, WireID: wireID}
		}
	}
	return ModelVariant{Provider: p, WireID: wireID, IsBespoke: true}
}

// Definitions returns every catalogued ModelDefinition for p.
func Definitions(p provider.Provider) []ModelDefinition {
	ids := catalog[p]
	defs := make([]ModelDefinition, 0, len(ids))
	for _, id := range ids {
		aggregateID := id
		defs = append(defs, ModelDefinition{
			Provider: p,
			WireID:   id,
			Variant:  EncodeVariantName(aggregateID),
		})
	}
	return defs
}

// AggregateWireID joins a provider name and model wire id into the
// aggregator-style "provider/model" wire id spec.md §4.4 encodes with the
// triple-underscore namespace delimiter.
func AggregateWireID(p provider.Provider, modelWireID string) string {
	return fmt.Sprintf("%s/%s", p, modelWireID)
}
