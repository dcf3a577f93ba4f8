// Package registry holds the authoritative table of registered commands and
// keeps the completion index in lockstep with it: after every mutation the
// index word list equals the current name set exactly, pushed exactly once
// per mutating call while the registry lock is held.
package registry

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/keyrun-app/keyrun/internal/errors"
	"github.com/keyrun-app/keyrun/internal/types"
)

// WordSink receives the full name list after each registry mutation. The
// completion index satisfies it.
type WordSink interface {
	SetWords(words []string)
}

// Registry is the name -> Command table. Identity is case-insensitive:
// registering "Google" then "google" leaves one entry whose stored casing is
// the last registered. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]types.Command // keyed by folded name
	sink WordSink
}

// New returns an empty registry feeding the given sink. A nil sink is
// tolerated for table-only uses such as read-only listings.
func New(sink WordSink) *Registry {
	return &Registry{
		cmds: make(map[string]types.Command),
		sink: sink,
	}
}

// Register inserts or replaces cmd by case-insensitive name. Replacement is
// whole-entry: no field merging with a previous registration. A blank name
// is an argument error and leaves the table untouched.
func (r *Registry) Register(cmd types.Command) error {
	name := norm.NFC.String(strings.TrimSpace(cmd.Name))
	if name == "" {
		return errors.NewArgument(errors.CodeBlankName, "command name is required")
	}
	cmd.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cmds[fold(name)] = cmd
	r.pushLocked()
	return nil
}

// Remove deletes the named command. Blank or unknown names return false with
// no side effects; on success the updated name list is pushed and true is
// returned.
func (r *Registry) Remove(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := fold(name)
	if _, ok := r.cmds[key]; !ok {
		return false
	}
	delete(r.cmds, key)
	r.pushLocked()
	return true
}

// Clear empties the table. It always pushes an empty word list, including
// when the table was already empty.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cmds = make(map[string]types.Command)
	r.pushLocked()
}

// ReplaceAll swaps the whole table for the given commands in one mutation
// with one push; reload uses it so a half-applied document is never
// observable. Entries with blank names reject the whole batch.
func (r *Registry) ReplaceAll(cmds []types.Command) error {
	next := make(map[string]types.Command, len(cmds))
	for _, cmd := range cmds {
		name := norm.NFC.String(strings.TrimSpace(cmd.Name))
		if name == "" {
			return errors.NewArgument(errors.CodeBlankName, "command name is required")
		}
		cmd.Name = name
		next[fold(name)] = cmd
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cmds = next
	r.pushLocked()
	return nil
}

// Has reports whether a command is registered under the name,
// case-insensitively. Blank names are never registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Get returns the command registered under the name, case-insensitively.
func (r *Registry) Get(name string) (types.Command, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Command{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.cmds[fold(name)]
	return cmd, ok
}

// All returns a copy of every registered command, name-sorted
// case-insensitively so listings and the control API are deterministic.
func (r *Registry) All() []types.Command {
	r.mu.RLock()
	out := make([]types.Command, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		out = append(out, cmd)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		fi, fj := fold(out[i].Name), fold(out[j].Name)
		if fi != fj {
			return fi < fj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cmds)
}

// pushLocked sends the current name set to the sink. Callers hold the write
// lock, making mutation and index sync one atomic unit.
func (r *Registry) pushLocked() {
	if r.sink == nil {
		return
	}
	names := make([]string, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		names = append(names, cmd.Name)
	}
	r.sink.SetWords(names)
}

// Fold is the identity key for a command name: NFC normalization followed
// by rune-wise simple case folding, matching the completion index's policy.
// Two names with equal folds are the same command.
func Fold(s string) string {
	return strings.Map(unicode.ToLower, norm.NFC.String(s))
}

func fold(s string) string { return Fold(s) }
