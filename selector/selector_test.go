package selector

import (
	"errors"
	"testing"

	"llmpipe/perr"
)

func TestThinkingTiers(t *testing.T) {
	thinking := []Capability{NormalThinking, NormalThinkingCheap, NormalUltrathink, SmartThink, SmartUltrathink}
	for _, c := range thinking {
		if !c.Thinking() {
			t.Errorf("capability %d expected Thinking() = true", c)
		}
	}
	nonThinking := []Capability{Fast, Normal, Smart, FastCheap}
	for _, c := range nonThinking {
		if c.Thinking() {
			t.Errorf("capability %d expected Thinking() = false", c)
		}
	}
}

func TestTemperatureBias(t *testing.T) {
	if CreativeFast.TemperatureBias() != TemperatureLowered {
		t.Error("CreativeFast should lower temperature")
	}
	if LiteralFast.TemperatureBias() != TemperatureRaised {
		t.Error("LiteralFast should raise temperature")
	}
	if Normal.TemperatureBias() != TemperatureDefault {
		t.Error("Normal should use default temperature")
	}
}

func TestResolvePicksFirstCredentialedCandidate(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MOONSHOT_API_KEY", "present")
	t.Setenv("MOONSHOT_AI_API_KEY", "")

	res, err := Resolve(Normal)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Candidate.WireID != "kimi-k2-0905-preview" {
		t.Errorf("expected moonshotai candidate to be selected, got %+v", res.Candidate)
	}
}

func TestResolveExhaustedWhenNoCredentials(t *testing.T) {
	for _, env := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "MOONSHOT_API_KEY", "MOONSHOT_AI_API_KEY"} {
		t.Setenv(env, "")
	}
	_, err := Resolve(Normal)
	if err == nil {
		t.Fatal("expected ProviderExhausted error")
	}
	var pe *perr.Error
	if !errors.As(err, &pe) || pe.Kind != perr.KindProviderExhausted {
		t.Errorf("expected perr.KindProviderExhausted, got %v", err)
	}
}

func TestStackReturnsCopyNotAlias(t *testing.T) {
	a := Stack(Fast)
	a[0].WireID = "mutated"
	b := Stack(Fast)
	if b[0].WireID == "mutated" {
		t.Error("Stack() must return a fresh copy, not an alias into defaultStacks")
	}
}
