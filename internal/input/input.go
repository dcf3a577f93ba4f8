// Package input classifies one raw line before the host decides what to do
// with it. Special commands are a tagged classification here, not string
// comparisons scattered through the session: a line is either normal input
// for the executor or one recognized special, and unknown "!" tokens get
// their own tag so the session can refuse them by name.
package input

import "strings"

// Kind tags what a line is.
type Kind int

const (
	// Normal lines go to the executor.
	Normal Kind = iota
	// Reload asks the session to re-read the commands document.
	Reload
	// Exit asks the host to shut down.
	Exit
	// Version asks for build information.
	Version
	// UnknownSpecial is a "!"-prefixed token the host does not recognize.
	UnknownSpecial
)

// String returns the tag name for logs.
func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Reload:
		return "reload"
	case Exit:
		return "exit"
	case Version:
		return "version"
	case UnknownSpecial:
		return "unknown-special"
	default:
		return "invalid"
	}
}

// Line is one classified input line.
type Line struct {
	Kind Kind
	// Text is the trimmed original line.
	Text string
	// Token is the special token that triggered a non-Normal kind.
	Token string
}

// Classify tags a raw line. Specials are matched on the first token only,
// case-insensitively, so "!RELOAD" and "!reload now" both reload. A line is
// special exactly when its first token starts with "!".
func Classify(raw string) Line {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "!") {
		return Line{Kind: Normal, Text: text}
	}

	token := text
	if i := strings.IndexFunc(text, func(r rune) bool { return r == ' ' || r == '\t' }); i > 0 {
		token = text[:i]
	}

	switch strings.ToLower(token) {
	case "!reload":
		return Line{Kind: Reload, Text: text, Token: token}
	case "!exit", "!quit":
		return Line{Kind: Exit, Text: text, Token: token}
	case "!version":
		return Line{Kind: Version, Text: text, Token: token}
	default:
		return Line{Kind: UnknownSpecial, Text: text, Token: token}
	}
}
