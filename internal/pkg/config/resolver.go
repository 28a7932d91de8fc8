package config

import (
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
)

const (
	// DefaultEnvSearchDepth is how many ancestor directories are scanned
	// for .env files in addition to the working directory.
	DefaultEnvSearchDepth = 3

	// EnvFileName is the single candidate file name per directory. Fixing
	// one name gives the search a total order across directory layouts.
	EnvFileName = ".env"

	geminiKeyName = "GEMINI_API_KEY"
	openaiKeyName = "OPENAI_API_KEY"
)

// Credentials holds the provider API keys discovered during resolution.
// At most one key per provider; never mutated after resolution.
type Credentials struct {
	GeminiKey string
	OpenAIKey string
}

// Key returns the credential for the named provider.
func (c Credentials) Key(provider string) string {
	switch provider {
	case ProviderGemini:
		return c.GeminiKey
	case ProviderOpenAI:
		return c.OpenAIKey
	}
	return ""
}

// Resolution is the outcome of credential resolution: the selected
// preferred provider and every credential seen up to the winning source.
type Resolution struct {
	Provider    string
	Credentials Credentials
	Source      string // which source yielded the winning key
}

// Fallback returns the other provider's name if its credential was seen
// during resolution.
func (r *Resolution) Fallback() (string, bool) {
	switch r.Provider {
	case ProviderGemini:
		if r.Credentials.OpenAIKey != "" {
			return ProviderOpenAI, true
		}
	case ProviderOpenAI:
		if r.Credentials.GeminiKey != "" {
			return ProviderGemini, true
		}
	}
	return "", false
}

// Source is one candidate configuration location, scanned in proximity order.
type Source struct {
	Name   string
	Values map[string]string
}

// lookup returns a non-empty value for the key, if present.
func (s Source) lookup(key string) (string, bool) {
	v, ok := s.Values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Resolve discovers provider credentials for one invocation.
//
// Sources are scanned closest-first: the process environment, then .env
// files from workDir outward through a bounded number of ancestors, then
// the loaded config file. The first source yielding the preferred
// provider's key wins immediately; a secondary key seen along the way is
// retained for the fallback chain but never downgrades the selection.
func Resolve(cfg *Config, workDir string) (*Resolution, error) {
	preferred := ProviderGemini
	if cfg != nil && cfg.Providers.Preferred != "" {
		preferred = cfg.Providers.Preferred
	}
	return ResolveFromSources(buildSources(cfg, workDir), preferred)
}

// ResolveFromSources runs the priority-ordered first-match search over an
// explicit source list. Split out from Resolve so the search semantics can
// be exercised against fixtures.
func ResolveFromSources(sources []Source, preferred string) (*Resolution, error) {
	preferredName, secondaryName := keyNames(preferred)

	res := &Resolution{}

	for _, src := range sources {
		// Record the secondary key first so a source holding both keys
		// still leaves the fallback credential available.
		if key, ok := src.lookup(secondaryName); ok && res.Credentials.Key(other(preferred)) == "" {
			setKey(res, other(preferred), key)
			if res.Source == "" {
				res.Source = src.Name
			}
		}
		if key, ok := src.lookup(preferredName); ok {
			setKey(res, preferred, key)
			res.Provider = preferred
			res.Source = src.Name
			// Preferred key found: resolution stops. Not a merge.
			return res, nil
		}
		// Keep scanning: a later source may still yield the preferred
		// provider; the selection never downgrades once found.
	}

	if sec := other(preferred); res.Credentials.Key(sec) != "" {
		res.Provider = sec
		return res, nil
	}

	return nil, apperrors.NewConfigNotFoundError()
}

// buildSources assembles the ordered candidate source list.
func buildSources(cfg *Config, workDir string) []Source {
	var sources []Source

	// 1. Process environment.
	env := map[string]string{}
	if v := os.Getenv(geminiKeyName); v != "" {
		env[geminiKeyName] = v
	}
	if v := os.Getenv(openaiKeyName); v != "" {
		env[openaiKeyName] = v
	}
	if len(env) > 0 {
		sources = append(sources, Source{Name: "environment", Values: env})
	}

	// 2. Layered .env files, closest directory first.
	depth := DefaultEnvSearchDepth
	if cfg != nil && cfg.Git.EnvSearchDepth > 0 {
		depth = cfg.Git.EnvSearchDepth
	}
	sources = append(sources, envFileSources(workDir, depth)...)

	// 3. The config file (already merged with defaults by viper).
	if cfg != nil {
		values := map[string]string{}
		if cfg.Providers.GeminiAPIKey != "" {
			values[geminiKeyName] = cfg.Providers.GeminiAPIKey
		}
		if cfg.Providers.OpenAIAPIKey != "" {
			values[openaiKeyName] = cfg.Providers.OpenAIAPIKey
		}
		if len(values) > 0 {
			sources = append(sources, Source{Name: "config", Values: values})
		}
	}

	return sources
}

// envFileSources collects .env files from dir outward through depth ancestors.
// Unreadable or absent files are skipped silently.
func envFileSources(dir string, depth int) []Source {
	var sources []Source

	current := dir
	for i := 0; i <= depth; i++ {
		path := filepath.Join(current, EnvFileName)
		if env, err := gotenv.Read(path); err == nil {
			values := map[string]string{}
			for k, v := range env {
				values[k] = v
			}
			sources = append(sources, Source{Name: path, Values: values})
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return sources
}

// keyNames returns the env-style key names for the preferred and secondary
// providers given the preference.
func keyNames(preferred string) (string, string) {
	if preferred == ProviderOpenAI {
		return openaiKeyName, geminiKeyName
	}
	return geminiKeyName, openaiKeyName
}

// other returns the opposite provider name.
func other(provider string) string {
	if provider == ProviderGemini {
		return ProviderOpenAI
	}
	return ProviderGemini
}

// setKey records a credential on the resolution.
func setKey(res *Resolution, provider, key string) {
	switch provider {
	case ProviderGemini:
		res.Credentials.GeminiKey = key
	case ProviderOpenAI:
		res.Credentials.OpenAIKey = key
	}
}
