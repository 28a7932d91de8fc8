package processor

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genSubjectLine generates plausible one-line commit subjects.
func genSubjectLine() gopter.Gen {
	return gen.Identifier().Map(func(word string) string {
		return "Update " + word + " handling"
	})
}

// genFunctionSection generates a function-list section, placeholder or
// real, with the placeholder flag attached.
func genFunctionSection() gopter.Gen {
	return gopter.CombineGens(
		gen.Bool(), // added vs removed
		gen.Bool(), // placeholder vs real
		gen.Identifier(),
	).Map(func(values []interface{}) sectionCase {
		header := "Functions Added:"
		if !values[0].(bool) {
			header = "Functions Removed:"
		}
		if values[1].(bool) {
			return sectionCase{text: header + "\n- None", placeholder: true}
		}
		return sectionCase{text: header + "\n- " + values[2].(string), placeholder: false}
	})
}

type sectionCase struct {
	text        string
	placeholder bool
}

func TestProcessProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	p := NewProcessor()

	properties.Property("processing is idempotent", prop.ForAll(
		func(subject string, section sectionCase) bool {
			input := subject + "\n\n" + section.text
			once, err := p.Process(input)
			if err != nil {
				return false
			}
			twice, err := p.Process(once)
			if err != nil {
				return false
			}
			return once == twice
		},
		genSubjectLine(),
		genFunctionSection(),
	))

	properties.Property("output never ends with a blank line", prop.ForAll(
		func(subject string, trailing int) bool {
			input := subject + strings.Repeat("\n", trailing)
			result, err := p.Process(input)
			if err != nil {
				return false
			}
			return !strings.HasSuffix(result, "\n") && strings.TrimSpace(result) != ""
		},
		genSubjectLine(),
		gen.IntRange(0, 5),
	))

	properties.Property("placeholder sections vanish, real ones survive", prop.ForAll(
		func(subject string, section sectionCase) bool {
			input := subject + "\n\n" + section.text
			result, err := p.Process(input)
			if err != nil {
				return false
			}
			if section.placeholder {
				return !strings.Contains(result, "Functions Added:") &&
					!strings.Contains(result, "Functions Removed:")
			}
			return strings.Contains(result, section.text)
		},
		genSubjectLine(),
		genFunctionSection(),
	))

	properties.Property("subject line is always preserved", prop.ForAll(
		func(subject string, section sectionCase) bool {
			input := subject + "\n\n" + section.text
			result, err := p.Process(input)
			if err != nil {
				return false
			}
			return strings.HasPrefix(result, subject)
		},
		genSubjectLine(),
		genFunctionSection(),
	))

	properties.TestingRun(t)
}
