// Package provider implements the static provider registry of spec.md §4.3:
// a closed set of supported LLM providers, their endpoints, their
// authentication shape, and the environment variable credential resolution
// order. Grounded on
// original_source/ai-pipeline/lib/src/rigging/providers/provider.rs's
// PROVIDER_CONFIG table.
package provider

import "os"

// Provider is the closed set of supported LLM providers.
type Provider int

const (
	Anthropic Provider = iota
	Deepseek
	Gemini
	Groq
	HuggingFace
	Mistral
	MoonshotAi
	Ollama
	OpenAi
	OpenRouter
	Xai
	Zai
	ZenMux
)

// All lists every provider in declaration order, the Go analogue of the
// original's strum::EnumIter derive.
func All() []Provider {
	return []Provider{
		Anthropic, Deepseek, Gemini, Groq, HuggingFace, Mistral, MoonshotAi,
		Ollama, OpenAi, OpenRouter, Xai, Zai, ZenMux,
	}
}

func (p Provider) String() string {
	if cfg, ok := registry[p]; ok {
		return cfg.name
	}
	return "unknown"
}

// AuthMethod is the shape of credential attachment a provider expects.
type AuthMethod int

const (
	// AuthNone means the provider requires no credential (local providers).
	AuthNone AuthMethod = iota
	// AuthBearerToken attaches "Authorization: Bearer <token>".
	AuthBearerToken
	// AuthAPIKeyHeader attaches the credential under a named header.
	AuthAPIKeyHeader
	// AuthQueryParam attaches the credential as a named URL query parameter.
	AuthQueryParam
)

// Config is one provider's static registry entry: credential env vars,
// auth shape (AuthParam holds the header name, e.g. "x-api-key", or the
// query key), base URL, models endpoint, and locality.
type Config struct {
	name           string
	EnvVars        []string
	Auth           AuthMethod
	AuthParam      string // header name for AuthAPIKeyHeader, query key for AuthQueryParam
	BaseURL        string
	ModelsEndpoint string
	IsLocal        bool
}

// registry is the single source of truth for provider settings, mirroring
// the original's PROVIDER_CONFIG lazy_static map.
var registry = map[Provider]Config{
	Anthropic: {
		name:           "anthropic",
		EnvVars:        []string{"ANTHROPIC_API_KEY"},
		Auth:           AuthAPIKeyHeader,
		AuthParam:      "x-api-key",
		BaseURL:        "https://api.anthropic.com",
		ModelsEndpoint: "/v1/models",
	},
	Deepseek: {
		name:           "deepseek",
		EnvVars:        []string{"DEEPSEEK_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://api.deepseek.com",
		ModelsEndpoint: "/v1/models",
	},
	Gemini: {
		name:           "gemini",
		EnvVars:        []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		Auth:           AuthQueryParam,
		AuthParam:      "key",
		BaseURL:        "https://generativelanguage.googleapis.com",
		ModelsEndpoint: "/v1beta/models",
	},
	Groq: {
		name:           "groq",
		EnvVars:        []string{"GROQ_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://api.groq.com/openai",
		ModelsEndpoint: "/v1/models",
	},
	HuggingFace: {
		name:           "huggingface",
		EnvVars:        []string{"HF_TOKEN", "HUGGINGFACE_TOKEN", "HUGGING_FACE_TOKEN"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://huggingface.co/api",
		ModelsEndpoint: "/models",
	},
	Mistral: {
		name:           "mistral",
		EnvVars:        []string{"MISTRAL_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://api.mistral.ai",
		ModelsEndpoint: "/v1/models",
	},
	MoonshotAi: {
		name:           "moonshotai",
		EnvVars:        []string{"MOONSHOT_API_KEY", "MOONSHOT_AI_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://api.moonshot.ai/v1",
		ModelsEndpoint: "/models",
	},
	Ollama: {
		name:           "ollama",
		EnvVars:        nil,
		Auth:           AuthNone,
		BaseURL:        "http://localhost:11434",
		ModelsEndpoint: "/v1/models",
		IsLocal:        true,
	},
	OpenAi: {
		name:           "openai",
		EnvVars:        []string{"OPENAI_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://api.openai.com",
		ModelsEndpoint: "/v1/models",
	},
	OpenRouter: {
		name:           "openrouter",
		EnvVars:        []string{"OPEN_ROUTER_API_KEY", "OPENROUTER_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://openrouter.ai/api",
		ModelsEndpoint: "/v1/models",
	},
	Xai: {
		name:           "xai",
		EnvVars:        []string{"XAI_API_KEY", "X_AI_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://api.x.ai/v1",
		ModelsEndpoint: "/models",
	},
	Zai: {
		name:           "zai",
		EnvVars:        []string{"ZAI_API_KEY", "Z_AI_API_KEY"},
		Auth:           AuthBearerToken,
		BaseURL:        "https://open.bigmodel.cn/api/paas/v4",
		ModelsEndpoint: "/models",
	},
	ZenMux: {
		name:           "zenmux",
		EnvVars:        []string{"ZENMUX_API_KEY", "ZEN_MUX_API_KEY"},
		Auth:           AuthNone,
		BaseURL:        "https://zenmux.ai/api",
		ModelsEndpoint: "/v1/models",
	},
}

// ConfigFor returns the static configuration for p. Every Provider constant
// has an entry; ok is false only for an out-of-range int masquerading as a
// Provider.
func ConfigFor(p Provider) (Config, bool) {
	cfg, ok := registry[p]
	return cfg, ok
}

// BaseURL returns p's API base URL.
func (p Provider) BaseURL() string { return registry[p].BaseURL }

// ModelsEndpoint returns p's model-listing endpoint, defaulting to
// "/v1/models" per the original's unwrap_or.
func (p Provider) ModelsEndpoint() string {
	if ep := registry[p].ModelsEndpoint; ep != "" {
		return ep
	}
	return "/v1/models"
}

// IsLocal reports whether p requires no credential.
func (p Provider) IsLocal() bool { return registry[p].IsLocal }

// ResolveCredential returns the first non-empty environment variable value
// among p's configured env vars, in declaration order (first match wins).
// Local providers always resolve with ok=true and an empty credential.
func (p Provider) ResolveCredential() (credential string, ok bool) {
	cfg := registry[p]
	if cfg.IsLocal {
		return "", true
	}
	for _, name := range cfg.EnvVars {
		if v := os.Getenv(name); v != "" {
			return v, true
		}
	}
	return "", false
}
