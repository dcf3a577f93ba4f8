package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyrun-app/keyrun/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		target string
		want   types.TargetKind
	}{
		// URLs.
		{"https://google.com", types.TargetURL},
		{"http://localhost:8080/path", types.TargetURL},
		{"HTTPS://UPPER.EXAMPLE", types.TargetURL},
		{"ftp://files.example.com", types.TargetURL},
		{"file:///home/user/doc.pdf", types.TargetURL},
		{"mailto:someone@example.com", types.TargetURL},
		{"tel:+15551234567", types.TargetURL},
		{"custom-scheme://thing", types.TargetURL},
		{"https://example.com/search?q=go&lang=en", types.TargetURL},

		// Path shapes.
		{"/usr/bin/ls", types.TargetPath},
		{`C:\tools\app.exe`, types.TargetPath},
		{"C:/tools/app.exe", types.TargetPath},
		{"c:", types.TargetPath},
		{`\\server\share\doc.txt`, types.TargetPath},
		{"./relative/script.sh", types.TargetPath},
		{"docs/readme.md", types.TargetPath},
		{"~/bin/tool", types.TargetPath},
		{`sub\dir`, types.TargetPath},

		// Bare executables.
		{"code", types.TargetExecutable},
		{"notepad.exe", types.TargetExecutable},
		{"gg", types.TargetExecutable},
		{"3://weird", types.TargetPath}, // invalid scheme, but slash-bearing
		{"mailto:", types.TargetExecutable},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.target))
		})
	}
}

func TestClassify_EmptyTarget(t *testing.T) {
	assert.Equal(t, types.TargetExecutable, Classify(""))
}
