package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// config holds default flag values loaded from an optional shc.yaml
// sitting next to the invocation, so a project can pin its include
// paths and macro defines once instead of repeating them on every
// invocation.
type config struct {
	Defines []string `yaml:"defines"`
	Include []string `yaml:"include"`
	ISystem []string `yaml:"isystem"`
}

// loadConfig reads path if present. A missing file is not an error:
// it just means no defaults apply.
func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &config{}, nil
		}
		return nil, err
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
