//go:build property
// +build property

package registry

import (
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/keyrun-app/keyrun/internal/completion"
	"github.com/keyrun-app/keyrun/internal/types"
)

// TestRegistryProperties pins the registry/completion-index lockstep
// invariant over generated mutation sequences.
func TestRegistryProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: after any register sequence the index words equal the
	// registered name set.
	properties.Property("index mirrors the table after registrations", prop.ForAll(
		func(names []string) bool {
			c := completion.NewCompleter()
			r := New(c)

			for _, name := range names {
				_ = r.Register(types.Command{Name: name, Target: "t"})
			}

			return namesMatch(r, c)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	// Property: removals keep the mirror exact.
	properties.Property("index mirrors the table after removals", prop.ForAll(
		func(names []string, removeEvery int) bool {
			if removeEvery < 1 {
				removeEvery = 1
			}
			c := completion.NewCompleter()
			r := New(c)

			for _, name := range names {
				_ = r.Register(types.Command{Name: name, Target: "t"})
			}
			for i, name := range names {
				if i%removeEvery == 0 {
					_ = r.Remove(name)
				}
			}

			return namesMatch(r, c)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.IntRange(1, 5),
	))

	// Property: case-variant re-registration never grows the table.
	properties.Property("case variants collapse to one entry", prop.ForAll(
		func(name string) bool {
			if strings.TrimSpace(name) == "" {
				return true
			}
			c := completion.NewCompleter()
			r := New(c)

			_ = r.Register(types.Command{Name: name, Target: "a"})
			_ = r.Register(types.Command{Name: strings.ToUpper(name), Target: "b"})
			_ = r.Register(types.Command{Name: strings.ToLower(name), Target: "c"})

			return r.Len() == 1 && len(c.Candidates("")) == 1
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func namesMatch(r *Registry, c *completion.Completer) bool {
	want := make([]string, 0, r.Len())
	for _, cmd := range r.All() {
		want = append(want, cmd.Name)
	}
	got := append([]string(nil), c.Candidates("")...)
	sort.Strings(want)
	sort.Strings(got)

	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
