package model

import (
	"fmt"
	"strings"
)

// ValidationError collects every problem found while validating an Experiment.
type ValidationError struct {
	Experiment string
	Problems   []string
}

func (e *ValidationError) Error() string {
	name := e.Experiment
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid experiment %q: %s", name, strings.Join(e.Problems, "; "))
}

// ParseProviderType converts a selector string into a ProviderType.
func ParseProviderType(s string) (ProviderType, error) {
	p := ProviderType(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider type %q", s)
	}
	return p, nil
}

// Validate checks the required fields of the experiment, its prompts and its test cases.
// Empty prompt or test case lists are allowed and simply produce no results.
func (e Experiment) Validate() error {
	var problems []string

	if strings.TrimSpace(e.Name) == "" {
		problems = append(problems, "name is required")
	}
	if e.Provider == "" {
		problems = append(problems, "provider is required")
	} else if !e.Provider.Valid() {
		problems = append(problems, fmt.Sprintf("unknown provider type %q", e.Provider))
	}
	for i, p := range e.Prompts {
		if p.Name == "" {
			problems = append(problems, fmt.Sprintf("prompts[%d]: name is required", i))
		}
		if p.Content == "" {
			problems = append(problems, fmt.Sprintf("prompts[%d]: content is required", i))
		}
	}
	for i, tc := range e.TestCases {
		if tc.InputText == "" {
			problems = append(problems, fmt.Sprintf("test_cases[%d]: input_text is required", i))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Experiment: e.Name, Problems: problems}
	}
	return nil
}
