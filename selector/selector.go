// Package selector implements the capability-tier model selection of
// spec.md §4.5: a closed tier enumeration, a static default candidate stack
// per tier, and credential-filtered resolution to a concrete (provider,
// model) pair. Grounded on
// original_source/ai-pipeline/lib/src/rigging/models/model_capability.rs.
package selector

import (
	"llmpipe/modelcatalog"
	"llmpipe/perr"
	"llmpipe/provider"
)

// Capability is the closed tier enumeration a caller selects a model by,
// instead of naming a provider/model pair directly.
type Capability int

const (
	FastCheap Capability = iota
	Fast
	Normal
	NormalCheap
	NormalThinking
	NormalThinkingCheap
	NormalUltrathink
	NormalCheapUltrathink
	Smart
	SmartCheap
	SmartThink
	SmartCheapThink
	SmartUltrathink
	SmartCheapUltrathink
	CreativeFast
	CreativeNormal
	CreativeSmart
	LiteralFast
	LiteralNormal
	LiteralSmart
)

// Candidate is one (provider, model) entry in a capability tier's ordered
// fallback stack.
type Candidate struct {
	Provider provider.Provider
	WireID   string
}

// Thinking reports whether resolving this capability should request
// extended reasoning from the underlying model, per spec.md §4.5.
func (c Capability) Thinking() bool {
	switch c {
	case NormalThinking, NormalThinkingCheap, NormalUltrathink, NormalCheapUltrathink,
		SmartThink, SmartCheapThink, SmartUltrathink, SmartCheapUltrathink:
		return true
	default:
		return false
	}
}

// TemperatureBias reports the directional temperature adjustment a
// Creative/Literal modifier applies, relative to the provider's default.
type TemperatureBias int

const (
	TemperatureDefault TemperatureBias = iota
	TemperatureLowered // Creative* tiers: lowered to increase creativity
	TemperatureRaised  // Literal* tiers: raised toward 1, but not to it
)

func (c Capability) TemperatureBias() TemperatureBias {
	switch c {
	case CreativeFast, CreativeNormal, CreativeSmart:
		return TemperatureLowered
	case LiteralFast, LiteralNormal, LiteralSmart:
		return TemperatureRaised
	default:
		return TemperatureDefault
	}
}

// defaultStacks holds the static fallback ordering for each tier. No stack
// contains a local provider. NormalCheap, NormalThinkingCheap and
// SmartCheap keep the more expensive model at the end of the stack; the
// other cheap tiers list only cheaper models.
var defaultStacks = map[Capability][]Candidate{
	FastCheap: {
		{provider.Groq, "llama-3.3-70b-versatile"},
		{provider.MoonshotAi, "moonshot-v1-8k"},
	},
	Fast: {
		{provider.Anthropic, "claude-haiku-4-5-20251015"},
		{provider.OpenAi, "gpt-4.1-mini"},
		{provider.MoonshotAi, "kimi-k2-turbo-preview"},
	},
	Normal: {
		{provider.Anthropic, "claude-sonnet-4-5-20250929"},
		{provider.OpenAi, "gpt-4.1"},
		{provider.MoonshotAi, "kimi-k2-0905-preview"},
	},
	NormalCheap: {
		{provider.OpenAi, "gpt-4.1-mini"},
		{provider.MoonshotAi, "kimi-k2-0905-preview"},
		{provider.Anthropic, "claude-sonnet-4-5-20250929"},
	},
	NormalThinking: {
		{provider.Anthropic, "claude-sonnet-4-5-20250929"},
		{provider.OpenAi, "o3"},
	},
	NormalThinkingCheap: {
		{provider.OpenAi, "o3-mini"},
		{provider.Anthropic, "claude-sonnet-4-5-20250929"},
	},
	NormalUltrathink: {
		{provider.Anthropic, "claude-sonnet-4-5-20250929"},
		{provider.OpenAi, "o3"},
	},
	NormalCheapUltrathink: {
		{provider.OpenAi, "o3-mini"},
	},
	Smart: {
		{provider.Anthropic, "claude-opus-4-5-20251101"},
		{provider.OpenAi, "gpt-5"},
	},
	SmartCheap: {
		{provider.OpenAi, "gpt-5-mini"},
		{provider.Anthropic, "claude-opus-4-5-20251101"},
	},
	SmartThink: {
		{provider.Anthropic, "claude-opus-4-5-20251101"},
	},
	SmartCheapThink: {
		{provider.OpenAi, "gpt-5-mini"},
	},
	SmartUltrathink: {
		{provider.Anthropic, "claude-opus-4-5-20251101"},
	},
	SmartCheapUltrathink: {
		{provider.OpenAi, "gpt-5-mini"},
	},
	CreativeFast:   {{provider.Anthropic, "claude-haiku-4-5-20251015"}},
	CreativeNormal: {{provider.Anthropic, "claude-sonnet-4-5-20250929"}},
	CreativeSmart:  {{provider.Anthropic, "claude-opus-4-5-20251101"}},
	LiteralFast:    {{provider.OpenAi, "gpt-4.1-mini"}},
	LiteralNormal:  {{provider.OpenAi, "gpt-4.1"}},
	LiteralSmart:   {{provider.OpenAi, "gpt-5"}},
}

// Stack returns the ordered candidate fallback list for a capability, in
// declaration order, regardless of credential availability.
func Stack(c Capability) []Candidate {
	stack := defaultStacks[c]
	out := make([]Candidate, len(stack))
	copy(out, stack)
	return out
}

// Resolution is a selected candidate together with the catalog's knowledge
// of whether its model wire id is in the static catalog.
type Resolution struct {
	Candidate Candidate
	Variant   modelcatalog.ModelVariant
}

// Resolve walks c's candidate stack in order and returns the first entry
// whose provider has a resolvable credential (or is local), per spec.md
// §4.5's credential-filtered fallback semantics. It returns
// perr.ProviderExhausted if no candidate in the stack has a usable
// credential.
func Resolve(c Capability) (Resolution, error) {
	for _, cand := range Stack(c) {
		if _, ok := cand.Provider.ResolveCredential(); ok {
			return Resolution{
				Candidate: cand,
				Variant:   modelcatalog.Lookup(cand.Provider, cand.WireID),
			}, nil
		}
	}
	return Resolution{}, perr.ProviderExhausted(tierName(c))
}

func tierName(c Capability) string {
	names := []string{
		"FastCheap", "Fast", "Normal", "NormalCheap", "NormalThinking",
		"NormalThinkingCheap", "NormalUltrathink", "NormalCheapUltrathink",
		"Smart", "SmartCheap", "SmartThink", "SmartCheapThink",
		"SmartUltrathink", "SmartCheapUltrathink", "CreativeFast",
		"CreativeNormal", "CreativeSmart", "LiteralFast", "LiteralNormal",
		"LiteralSmart",
	}
	if int(c) >= 0 && int(c) < len(names) {
		return names[c]
	}
	return "Unknown"
}
