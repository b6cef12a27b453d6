package provider

import "testing"

func TestAllContainsThirteenProviders(t *testing.T) {
	if got := len(All()); got != 13 {
		t.Errorf("len(All()) = %d, want 13", got)
	}
}

func TestEveryProviderHasConfig(t *testing.T) {
	for _, p := range All() {
		if _, ok := ConfigFor(p); !ok {
			t.Errorf("provider %v has no config", p)
		}
	}
}

func TestModelsEndpointDefaultsToV1Models(t *testing.T) {
	cases := map[Provider]string{
		Anthropic:  "/v1/models",
		Deepseek:   "/v1/models",
		Gemini:     "/v1beta/models",
		MoonshotAi: "/models",
		Xai:        "/models",
	}
	for p, want := range cases {
		if got := p.ModelsEndpoint(); got != want {
			t.Errorf("%v.ModelsEndpoint() = %q, want %q", p, got, want)
		}
	}
}

func TestOllamaIsLocal(t *testing.T) {
	if !Ollama.IsLocal() {
		t.Error("Ollama should be local")
	}
	if Anthropic.IsLocal() {
		t.Error("Anthropic should not be local")
	}
}

func TestResolveCredentialFirstMatchWins(t *testing.T) {
	t.Setenv("MOONSHOT_API_KEY", "")
	t.Setenv("MOONSHOT_AI_API_KEY", "secondary")
	cred, ok := MoonshotAi.ResolveCredential()
	if !ok || cred != "secondary" {
		t.Errorf("ResolveCredential() = (%q, %v), want (\"secondary\", true)", cred, ok)
	}

	t.Setenv("MOONSHOT_API_KEY", "primary")
	cred, ok = MoonshotAi.ResolveCredential()
	if !ok || cred != "primary" {
		t.Errorf("ResolveCredential() = (%q, %v), want (\"primary\", true), primary env var should win", cred, ok)
	}
}

func TestResolveCredentialMissingReturnsFalse(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, ok := OpenAi.ResolveCredential()
	if ok {
		t.Error("expected ResolveCredential to fail with no env vars set")
	}
}

func TestResolveCredentialLocalAlwaysOK(t *testing.T) {
	_, ok := Ollama.ResolveCredential()
	if !ok {
		t.Error("local provider should always resolve")
	}
}

func TestStringNames(t *testing.T) {
	if Anthropic.String() != "anthropic" {
		t.Errorf("Anthropic.String() = %q", Anthropic.String())
	}
	if OpenAi.String() != "openai" {
		t.Errorf("OpenAi.String() = %q", OpenAi.String())
	}
}
