package keybinds

import (
	"fmt"
	"strings"
)

// reservedKeys cannot be rebound away from their global action
var reservedKeys = map[string]Action{
	"ctrl+c": ActionQuitForce,
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}

	if strings.ContainsAny(key, " \t\n") && key != " " {
		return fmt.Errorf("key contains whitespace: %q", key)
	}

	if action, ok := reservedKeys[key]; ok {
		return fmt.Errorf("key '%s' is reserved for %s", key, action)
	}

	return nil
}

// ValidateAction checks if an action string is a known action
func ValidateAction(actionStr string) error {
	if actionStr == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if !IsKnownAction(Action(actionStr)) {
		return fmt.Errorf("unknown action '%s'", actionStr)
	}
	return nil
}
