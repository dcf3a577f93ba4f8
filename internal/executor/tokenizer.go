// Package executor turns one raw input line into a started OS process:
// tokenize, resolve against the registry, classify the target, launch.
// Launching is fire-and-forget; a reaper goroutine collects the child so
// nothing is left as a zombie.
package executor

import (
	"strings"
	"unicode"

	"github.com/keyrun-app/keyrun/internal/errors"
)

// splitTokens breaks a line into tokens shell-style. Runs of whitespace
// separate tokens; single- or double-quoted segments keep their internal
// whitespace with the quotes stripped. Two deliberate leniencies: an
// unterminated quote yields a best-effort token running to end of line, and
// an empty quoted segment ("" or '') produces no token. A closing quote
// terminates its token immediately.
func splitTokens(input string) []string {
	tokens := make([]string, 0, 4)
	var current strings.Builder
	inQuote := false
	var quote rune

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range input {
		switch {
		case inQuote && r == quote:
			inQuote = false
			flush()
		case inQuote:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			inQuote = true
			quote = r
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// ParseTarget extracts the execution target: the first token of the line.
// Blank input is an argument error. A quoted first token may span spaces,
// so "C:\Program Files\app.exe" parses as one target; bare URLs keep their
// query strings since nothing splits an unquoted non-space run.
func ParseTarget(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", errors.NewArgument(errors.CodeEmptyInput, "input is blank").WithInput(input)
	}
	tokens := splitTokens(input)
	if len(tokens) == 0 {
		// Quoted-empty input such as `""` trims to nothing usable.
		return "", errors.NewArgument(errors.CodeEmptyInput, "input holds no token").WithInput(input)
	}
	return tokens[0], nil
}

// ParseArguments returns every token after the target. Blank input or a
// bare target yields an empty slice, never an error; callers validate the
// line itself through ParseTarget.
func ParseArguments(input string) []string {
	tokens := splitTokens(input)
	if len(tokens) <= 1 {
		return []string{}
	}
	return tokens[1:]
}
