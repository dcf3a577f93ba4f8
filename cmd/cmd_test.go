package cmd

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyrun-app/keyrun/internal/config"
	kerrors "github.com/keyrun-app/keyrun/internal/errors"
)

// resetState clears viper so each test sees only its own settings. initConfig
// never runs here, so nothing reads .keyrun.yml from disk.
func resetState(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

// chdirTemp moves the test into a fresh directory so relative paths like the
// default commands.yml cannot collide with real files.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	oldDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldDir) })

	require.NoError(t, os.Chdir(tempDir))
	return tempDir
}

func writeCommandsDoc(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "commands.yml")
	doc := `commands:
  - name: mail
    target: https://mail.example.com
    description: Web mail
  - name: notes
    target: /home/me/notes.md
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestInitCommand(t *testing.T) {
	chdirTemp(t)
	initMinimal = false

	err := runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	assert.FileExists(t, ".keyrun.yml")
	assert.FileExists(t, "commands.yml")

	// The starter document must pass its own validation.
	require.NoError(t, runValidate(&cobra.Command{}, []string{"commands.yml"}))
}

func TestInitCommandWithDirectory(t *testing.T) {
	chdirTemp(t)
	initMinimal = false

	err := runInit(&cobra.Command{}, []string{"launcher"})
	require.NoError(t, err)

	assert.FileExists(t, "launcher/.keyrun.yml")
	assert.FileExists(t, "launcher/commands.yml")
}

func TestInitCommandMinimal(t *testing.T) {
	chdirTemp(t)
	initMinimal = true
	t.Cleanup(func() { initMinimal = false })

	err := runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	assert.FileExists(t, ".keyrun.yml")
	assert.NoFileExists(t, "commands.yml")
}

func TestInitCommandKeepsExistingFiles(t *testing.T) {
	chdirTemp(t)
	initMinimal = false

	require.NoError(t, os.WriteFile("commands.yml", []byte("commands: []\n"), 0o644))

	err := runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// The existing document is untouched.
	data, err := os.ReadFile("commands.yml")
	require.NoError(t, err)
	assert.Equal(t, "commands: []\n", string(data))
}

func TestValidateCommand(t *testing.T) {
	tempDir := t.TempDir()
	path := writeCommandsDoc(t, tempDir)

	err := runValidate(&cobra.Command{}, []string{path})
	require.NoError(t, err)
}

func TestValidateCommandBadDocument(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "commands.yml")
	require.NoError(t, os.WriteFile(path, []byte("commands:\n  - name: [unclosed\n"), 0o644))

	err := runValidate(&cobra.Command{}, []string{path})
	require.Error(t, err)
	assert.True(t, kerrors.IsConfigParse(err))
}

func TestValidateCommandMissingFile(t *testing.T) {
	tempDir := t.TempDir()

	err := runValidate(&cobra.Command{}, []string{filepath.Join(tempDir, "nope.yml")})
	require.Error(t, err)
}

func TestValidateCommandDuplicateNames(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "commands.yml")
	doc := `commands:
  - name: Mail
    target: https://mail.example.com
  - name: mail
    target: https://inbox.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	// Duplicates are reported, not fatal: the registry keeps the last one.
	err := runValidate(&cobra.Command{}, []string{path})
	require.NoError(t, err)
}

func TestValidateCommandUsesConfiguredFile(t *testing.T) {
	resetState(t)
	tempDir := t.TempDir()
	path := writeCommandsDoc(t, tempDir)
	viper.Set("commands.file", path)

	err := runValidate(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestRunCommandVersionSpecial(t *testing.T) {
	resetState(t)
	tempDir := chdirTemp(t)
	writeCommandsDoc(t, tempDir)
	runFormat = "text"

	err := runRun(&cobra.Command{}, []string{"!version"})
	require.NoError(t, err)
}

func TestRunCommandVersionSpecialJSON(t *testing.T) {
	resetState(t)
	tempDir := chdirTemp(t)
	writeCommandsDoc(t, tempDir)
	runFormat = "json"
	t.Cleanup(func() { runFormat = "text" })

	err := runRun(&cobra.Command{}, []string{"!version"})
	require.NoError(t, err)
}

func TestRunCommandReloadSpecial(t *testing.T) {
	resetState(t)
	tempDir := chdirTemp(t)
	writeCommandsDoc(t, tempDir)
	runFormat = "text"

	err := runRun(&cobra.Command{}, []string{"!reload"})
	require.NoError(t, err)
}

func TestRunCommandUnknownName(t *testing.T) {
	resetState(t)
	tempDir := chdirTemp(t)
	writeCommandsDoc(t, tempDir)
	runFormat = "text"

	err := runRun(&cobra.Command{}, []string{"zzz"})
	require.Error(t, err)
	assert.True(t, kerrors.IsNotFound(err))
}

func TestHistoryCommandDisabled(t *testing.T) {
	resetState(t)

	// History defaults to off; the command explains instead of failing.
	err := runHistory(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestHistoryCommandEmptyStore(t *testing.T) {
	resetState(t)
	tempDir := t.TempDir()
	viper.Set("history.enabled", true)
	viper.Set("history.file", filepath.Join(tempDir, "launches.db"))
	historyLimit = 20
	historyFormat = "table"

	err := runHistory(&cobra.Command{}, []string{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(tempDir, "launches.db"))
}

func TestListCommand(t *testing.T) {
	resetState(t)
	tempDir := t.TempDir()
	path := writeCommandsDoc(t, tempDir)
	viper.Set("commands.file", path)

	for _, format := range []string{"table", "json", "yaml"} {
		listFlags.Format = format
		err := runList(&cobra.Command{}, []string{})
		require.NoError(t, err, "format %s", format)
	}
	listFlags.Format = "table"
}

func TestListCommandEmptyDocument(t *testing.T) {
	resetState(t)
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "commands.yml")
	require.NoError(t, os.WriteFile(path, []byte("commands: []\n"), 0o644))
	viper.Set("commands.file", path)
	listFlags.Format = "table"

	err := runList(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	versionFormat = "text"
	versionShort = false
	require.NoError(t, runVersionCommand(&cobra.Command{}, []string{}))

	versionShort = true
	require.NoError(t, runVersionCommand(&cobra.Command{}, []string{}))
	versionShort = false

	versionFormat = "json"
	require.NoError(t, runVersionCommand(&cobra.Command{}, []string{}))

	versionFormat = "xml"
	require.Error(t, runVersionCommand(&cobra.Command{}, []string{}))
	versionFormat = "text"
}

func TestApplyCommandsFileFlag(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringP("commands-file", "c", "commands.yml", "")

	cfg := &config.Config{}
	cfg.Commands.File = "from-config.yml"

	// Untouched flag leaves the configured file alone.
	applyCommandsFileFlag(cmd, cfg)
	assert.Equal(t, "from-config.yml", cfg.Commands.File)

	require.NoError(t, cmd.Flags().Set("commands-file", "explicit.yml"))
	applyCommandsFileFlag(cmd, cfg)
	assert.Equal(t, "explicit.yml", cfg.Commands.File)
}

func TestPromptHistoryPath(t *testing.T) {
	path := promptHistoryPath()
	assert.Contains(t, path, "prompt_history")
}

func TestCheckCommandsDocument(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	cfg := &config.Config{}

	cfg.Commands.File = filepath.Join(tempDir, "missing.yml")
	result := checkCommandsDocument(ctx, cfg)
	assert.Equal(t, "warning", result.Status)

	cfg.Commands.File = writeCommandsDoc(t, tempDir)
	result = checkCommandsDocument(ctx, cfg)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 2, result.Details["count"])

	broken := filepath.Join(tempDir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("commands:\n  - name: [unclosed\n"), 0o644))
	cfg.Commands.File = broken
	result = checkCommandsDocument(ctx, cfg)
	assert.Equal(t, "error", result.Status)

	empty := filepath.Join(tempDir, "empty.yml")
	require.NoError(t, os.WriteFile(empty, []byte("commands: []\n"), 0o644))
	cfg.Commands.File = empty
	result = checkCommandsDocument(ctx, cfg)
	assert.Equal(t, "info", result.Status)
}

func TestCheckHistoryStoreDisabled(t *testing.T) {
	cfg := &config.Config{}

	result := checkHistoryStore(context.Background(), cfg)
	assert.Equal(t, "info", result.Status)
	assert.Contains(t, result.Message, "disabled")
}

func TestCheckPortAvailability(t *testing.T) {
	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{}
	cfg.Server.Port = port

	result := checkPortAvailability(context.Background(), cfg)
	assert.Equal(t, "warning", result.Status)

	listener.Close()
	result = checkPortAvailability(context.Background(), cfg)
	assert.Equal(t, "ok", result.Status)
}

func TestCalculateSummary(t *testing.T) {
	results := []DiagnosticResult{
		{Status: "ok"},
		{Status: "ok"},
		{Status: "warning"},
		{Status: "error"},
		{Status: "info"},
	}

	summary := calculateSummary(results)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.OK)
	assert.Equal(t, 1, summary.Warnings)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.Info)
}
