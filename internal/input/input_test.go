package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  Kind
		wantText  string
		wantToken string
	}{
		{
			name:     "plain command line",
			raw:      "gg search terms",
			wantKind: Normal,
			wantText: "gg search terms",
		},
		{
			name:     "blank line is normal",
			raw:      "   ",
			wantKind: Normal,
			wantText: "",
		},
		{
			name:      "reload",
			raw:       "!reload",
			wantKind:  Reload,
			wantText:  "!reload",
			wantToken: "!reload",
		},
		{
			name:      "reload uppercase",
			raw:       "!RELOAD",
			wantKind:  Reload,
			wantText:  "!RELOAD",
			wantToken: "!RELOAD",
		},
		{
			name:      "reload with trailing words",
			raw:       "!reload now please",
			wantKind:  Reload,
			wantText:  "!reload now please",
			wantToken: "!reload",
		},
		{
			name:      "exit",
			raw:       "!exit",
			wantKind:  Exit,
			wantText:  "!exit",
			wantToken: "!exit",
		},
		{
			name:      "quit alias",
			raw:       "!quit",
			wantKind:  Exit,
			wantText:  "!quit",
			wantToken: "!quit",
		},
		{
			name:      "version",
			raw:       "!version",
			wantKind:  Version,
			wantText:  "!version",
			wantToken: "!version",
		},
		{
			name:      "unknown special",
			raw:       "!selfdestruct",
			wantKind:  UnknownSpecial,
			wantText:  "!selfdestruct",
			wantToken: "!selfdestruct",
		},
		{
			name:      "bare bang",
			raw:       "!",
			wantKind:  UnknownSpecial,
			wantText:  "!",
			wantToken: "!",
		},
		{
			name:     "bang mid-line stays normal",
			raw:      "echo hello!",
			wantKind: Normal,
			wantText: "echo hello!",
		},
		{
			name:      "leading whitespace before special",
			raw:       "  !reload",
			wantKind:  Reload,
			wantText:  "!reload",
			wantToken: "!reload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)

			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantToken, got.Token)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "reload", Reload.String())
	assert.Equal(t, "exit", Exit.String())
	assert.Equal(t, "version", Version.String())
	assert.Equal(t, "unknown-special", UnknownSpecial.String())
	assert.Equal(t, "invalid", Kind(99).String())
}
