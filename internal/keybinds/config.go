package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config represents the user's keybinding configuration.
// Each section maps an action to a comma-separated key list, e.g.
// "save": "ctrl+s,ctrl+w". Comments and trailing commas are allowed.
type Config struct {
	Version     string            `json:"version"`
	Global      map[string]string `json:"global,omitempty"`
	Connections map[string]string `json:"connections,omitempty"`
	ConnectForm map[string]string `json:"connect_form,omitempty"`
	Connecting  map[string]string `json:"connecting,omitempty"`
	Error       map[string]string `json:"error,omitempty"`
	Keys        map[string]string `json:"keys,omitempty"`
	Editor      map[string]string `json:"editor,omitempty"`
	Create      map[string]string `json:"create,omitempty"`
	Filter      map[string]string `json:"filter,omitempty"`
	Query       map[string]string `json:"query,omitempty"`
	Help        map[string]string `json:"help,omitempty"`
	Confirm     map[string]string `json:"confirm,omitempty"`
}

// ParseConfig parses a keybinds.json document
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}
	return &config, nil
}

// LoadConfig loads keybinding configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:      c.Global,
		ContextConnections: c.Connections,
		ContextConnectForm: c.ConnectForm,
		ContextConnecting:  c.Connecting,
		ContextError:       c.Error,
		ContextKeys:        c.Keys,
		ContextEditor:      c.Editor,
		ContextCreate:      c.Create,
		ContextFilter:      c.Filter,
		ContextQuery:       c.Query,
		ContextHelp:        c.Help,
		ContextConfirm:     c.Confirm,
	}
}

// ApplyConfig applies user configuration to a registry.
// A configured action replaces all of its default keys in that context.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, section := range config.sections() {
		for actionStr, keyList := range section {
			action := Action(actionStr)
			if err := ValidateAction(actionStr); err != nil {
				return fmt.Errorf("context '%s': %w", context, err)
			}

			keys := SplitKeys(keyList)
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("context '%s', action '%s': %w", context, action, err)
				}
			}

			registry.UnbindAction(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}
	return nil
}

// SplitKeys splits a comma-separated key list. A lone "," is the comma key.
func SplitKeys(list string) []string {
	if strings.TrimSpace(list) == "," {
		return []string{","}
	}
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
		}

		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}
	// If config doesn't exist, that's fine - use defaults

	return registry, nil
}
