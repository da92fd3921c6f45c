// Package filter narrows key listings and queries stored values.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/s1dash/internal/format"
	"github.com/studiowebux/s1dash/internal/types"
)

// ShellTimeout bounds a $(command) query on top of the caller's context
const ShellTimeout = 30 * time.Second

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Eval runs exprs over a stored value in order, each one reading the
// previous result. Blank expressions are skipped. An expression of the form
// $(command) runs command through sh with the value on stdin; anything else
// is JMESPath and needs a JSON value (a *format.FormatError otherwise).
// Cancelling ctx kills a running command.
func Eval(ctx context.Context, value string, exprs ...string) (string, error) {
	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}

		var err error
		if m := shellPattern.FindStringSubmatch(expr); m != nil {
			value, err = runShell(ctx, value, m[1])
		} else {
			value, err = search(value, expr)
		}
		if err != nil {
			return "", err
		}
	}
	return value, nil
}

func search(value, expr string) (string, error) {
	if err := format.Validate(value); err != nil {
		return "", err
	}

	jp, err := jmespath.Compile(expr)
	if err != nil {
		return "", fmt.Errorf("invalid expression %q: %w", expr, err)
	}

	var data any
	if err := json.Unmarshal([]byte(value), &data); err != nil {
		return "", &format.FormatError{Err: err}
	}
	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("expression %q failed: %w", expr, err)
	}

	out, err := json.MarshalIndent(result, "", format.Indent)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

func runShell(ctx context.Context, value, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ShellTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(value)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren can hold the pipes open after a kill
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("command %q stopped: %w", command, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("command %q failed: %s", command, msg)
		}
		return "", fmt.Errorf("command %q failed: %w", command, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Match is a key that matched a fuzzy pattern
type Match struct {
	Key     string
	Indexes []int // byte offsets of the matched characters, for highlighting
}

// Keys returns the keys matching pattern, best match first.
// An empty pattern matches every key in its original order.
func Keys(keys []string, pattern string) []Match {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		matches := make([]Match, len(keys))
		for i, k := range keys {
			matches[i] = Match{Key: k}
		}
		return matches
	}

	found := fuzzy.Find(pattern, keys)
	matches := make([]Match, len(found))
	for i, m := range found {
		matches[i] = Match{Key: m.Str, Indexes: m.MatchedIndexes}
	}
	return matches
}

// connectionSource adapts a connection list to fuzzy.Source
type connectionSource []types.Connection

func (s connectionSource) String(i int) string {
	return s[i].Name
}

func (s connectionSource) Len() int {
	return len(s)
}

// Connections returns the connections whose name matches pattern
func Connections(connections []types.Connection, pattern string) []types.Connection {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return connections
	}

	found := fuzzy.FindFrom(pattern, connectionSource(connections))
	result := make([]types.Connection, len(found))
	for i, m := range found {
		result[i] = connections[m.Index]
	}
	return result
}
