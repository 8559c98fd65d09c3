package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProcessConfig binds an operator to an external command.
type ProcessConfig struct {
	Operator    string            `yaml:"operator" json:"operator"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	// AppendParams passes the step parameters as trailing arguments.
	AppendParams bool   `yaml:"append_params" json:"append_params"`
	Description  string `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of commands.yaml.
type ConfigFile struct {
	Commands []ProcessConfig `yaml:"commands" json:"commands"`
}

// LoadCommands reads a configuration file (YAML or JSON) and returns the
// commands keyed by operator. A missing file means no commands.
func LoadCommands(path string) (map[string]ProcessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ProcessConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read commands config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	commands := make(map[string]ProcessConfig, len(cfg.Commands))
	for _, c := range cfg.Commands {
		if c.Operator == "" {
			return nil, fmt.Errorf("%s: command %q has no operator", path, c.Command)
		}
		if c.Command == "" {
			return nil, fmt.Errorf("%s: operator %q has no command", path, c.Operator)
		}
		commands[c.Operator] = c
	}
	return commands, nil
}
