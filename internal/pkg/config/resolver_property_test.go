package config

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genSourceList generates source lists where each source independently
// holds a gemini key, an openai key, both, or neither.
func genSourceList() gopter.Gen {
	genSource := gopter.CombineGens(
		gen.Bool(),
		gen.Bool(),
		gen.Identifier(),
	).Map(func(values []interface{}) Source {
		src := Source{Name: values[2].(string), Values: map[string]string{}}
		if values[0].(bool) {
			src.Values["GEMINI_API_KEY"] = "AIza-" + values[2].(string) + "-0123456789abcdefghij"
		}
		if values[1].(bool) {
			src.Values["OPENAI_API_KEY"] = "sk-" + values[2].(string) + "-0123456789abcdefghij"
		}
		return src
	})
	return gen.SliceOf(genSource)
}

func hasKey(sources []Source, name string) bool {
	for _, src := range sources {
		if v, ok := src.Values[name]; ok && v != "" {
			return true
		}
	}
	return false
}

func TestResolveFromSourcesProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("preferred key anywhere means preferred provider wins", prop.ForAll(
		func(sources []Source) bool {
			res, err := ResolveFromSources(sources, ProviderGemini)
			if hasKey(sources, "GEMINI_API_KEY") {
				return err == nil && res.Provider == ProviderGemini
			}
			if hasKey(sources, "OPENAI_API_KEY") {
				return err == nil && res.Provider == ProviderOpenAI
			}
			return err != nil
		},
		genSourceList(),
	))

	properties.Property("winning source is the closest one holding the preferred key", prop.ForAll(
		func(sources []Source) bool {
			res, err := ResolveFromSources(sources, ProviderGemini)
			if err != nil || res.Provider != ProviderGemini {
				return err != nil || res.Provider == ProviderOpenAI
			}
			for _, src := range sources {
				if v := src.Values["GEMINI_API_KEY"]; v != "" {
					return res.Source == src.Name && res.Credentials.GeminiKey == v
				}
			}
			return false
		},
		genSourceList(),
	))

	properties.Property("resolution never invents credentials", prop.ForAll(
		func(sources []Source) bool {
			res, err := ResolveFromSources(sources, ProviderGemini)
			if err != nil {
				return true
			}
			if res.Credentials.GeminiKey != "" && !hasKey(sources, "GEMINI_API_KEY") {
				return false
			}
			if res.Credentials.OpenAIKey != "" && !hasKey(sources, "OPENAI_API_KEY") {
				return false
			}
			return res.Credentials.Key(res.Provider) != ""
		},
		genSourceList(),
	))

	properties.TestingRun(t)
}
