package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// LoadExperiments reads experiments from a YAML or JSON file. The document
// may hold a single experiment, a list of experiments, or a mapping with an
// "experiments" list. Every experiment is validated.
func LoadExperiments(path string) ([]model.Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file %s: %w", path, err)
	}

	exps, err := ParseExperiments(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return exps, nil
}

// ParseExperiments decodes experiments from YAML or JSON bytes.
func ParseExperiments(data []byte) ([]model.Experiment, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse experiments: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("no experiments found")
	}
	doc := root.Content[0]

	var exps []model.Experiment
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&exps); err != nil {
			return nil, fmt.Errorf("failed to decode experiment list: %w", err)
		}
	case yaml.MappingNode:
		var wrapper struct {
			Experiments []model.Experiment `yaml:"experiments"`
		}
		if hasKey(doc, "experiments") {
			if err := doc.Decode(&wrapper); err != nil {
				return nil, fmt.Errorf("failed to decode experiments: %w", err)
			}
			exps = wrapper.Experiments
			break
		}
		var exp model.Experiment
		if err := doc.Decode(&exp); err != nil {
			return nil, fmt.Errorf("failed to decode experiment: %w", err)
		}
		exps = []model.Experiment{exp}
	default:
		return nil, fmt.Errorf("unexpected document shape: want an experiment or a list of experiments")
	}

	if len(exps) == 0 {
		return nil, fmt.Errorf("no experiments found")
	}
	for _, exp := range exps {
		if err := exp.Validate(); err != nil {
			return nil, err
		}
	}
	return exps, nil
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}
