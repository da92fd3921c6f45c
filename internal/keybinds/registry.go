package keybinds

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// Binding is one key bound to an action
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry maps keys to actions per context. Lookups fall back to
// ContextGlobal. It is owned by the UI goroutine and not safe for
// concurrent use.
type Registry struct {
	bindings map[Context]map[string]Action

	// pending holds the first key of a doubled sequence (gg) per context
	pending map[Context]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register binds key to action in context, replacing any earlier binding
// of that key
func (r *Registry) Register(context Context, key string, action Action) {
	keys, ok := r.bindings[context]
	if !ok {
		keys = make(map[string]Action)
		r.bindings[context] = keys
	}
	keys[key] = action
}

// RegisterMultiple binds every key in keys to action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// UnbindAction removes every key bound to action in context
func (r *Registry) UnbindAction(context Context, action Action) {
	for key, bound := range r.bindings[context] {
		if bound == action {
			delete(r.bindings[context], key)
		}
	}
}

// scopes lists the contexts consulted for context, most specific first
func scopes(context Context) []Context {
	if context == ContextGlobal {
		return []Context{ContextGlobal}
	}
	return []Context{context, ContextGlobal}
}

// Match returns the action bound to key in context or, failing that, in
// the global context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	for _, scope := range scopes(context) {
		if action, ok := r.bindings[scope][key]; ok {
			return action, true
		}
	}
	return "", false
}

// MatchSequence is Match with support for doubled keys such as gg. A key
// that starts a bound sequence reports pending and matches nothing yet.
// When the next key does not complete the sequence it is matched on its own.
func (r *Registry) MatchSequence(context Context, key string) (action Action, ok, pending bool) {
	if first, waiting := r.pending[context]; waiting {
		delete(r.pending, context)
		if action, ok := r.Match(context, first+key); ok && first == key {
			return action, true, false
		}
	}

	if utf8.RuneCountInString(key) == 1 {
		if _, ok := r.Match(context, key+key); ok {
			r.pending[context] = key
			return "", false, true
		}
	}

	action, ok = r.Match(context, key)
	return action, ok, false
}

// KeysFor returns the keys bound to action, sorted. Context bindings win;
// global keys are reported only when the context has none.
func (r *Registry) KeysFor(context Context, action Action) []string {
	for _, scope := range scopes(context) {
		var keys []string
		for key, bound := range r.bindings[scope] {
			if bound == action {
				keys = append(keys, key)
			}
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			return keys
		}
	}
	return nil
}

// Describe renders the keys bound to action for hints, e.g. "k, up"
func (r *Registry) Describe(context Context, action Action) string {
	keys := r.KeysFor(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, ", ")
}

// ListBindings returns the bindings visible in context: its own sorted by
// key, then the global ones
func (r *Registry) ListBindings(context Context) []Binding {
	var list []Binding
	for _, scope := range scopes(context) {
		start := len(list)
		for key, action := range r.bindings[scope] {
			list = append(list, Binding{Key: key, Action: action, Context: scope})
		}
		slices.SortFunc(list[start:], func(a, b Binding) int {
			return strings.Compare(a.Key, b.Key)
		})
	}
	return list
}
