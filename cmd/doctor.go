package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/executor"
	"github.com/keyrun-app/keyrun/internal/history"
	"github.com/keyrun-app/keyrun/internal/loader"
	"github.com/keyrun-app/keyrun/internal/types"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the launcher environment",
	Long: `Diagnose the launcher setup and report anything that would stop
commands from launching. Checks cover:

- Configuration file presence and validity
- Commands document parse and entry health
- Target resolution (bare executables on PATH)
- The OS open handler used for URLs and paths
- Control server port availability
- Launch history store

Examples:
  keyrun doctor                    # Full diagnosis
  keyrun doctor --verbose          # Include informational results
  keyrun doctor --format json      # Output as JSON for tooling`,
	RunE: runDoctor,
}

var (
	doctorVerbose bool
	doctorFormat  string
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string                 `json:"name" yaml:"name"`
	Category   string                 `json:"category" yaml:"category"`
	Status     string                 `json:"status" yaml:"status"` // "ok", "warning", "error", "info"
	Message    string                 `json:"message" yaml:"message"`
	Suggestion string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Info     int `json:"info" yaml:"info"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show verbose diagnostic information")
	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", "table", "Output format (table|json|yaml)")

	AddFlagValidation(doctorCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"table", "json", "yaml"})
	})
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println("🔍 Keyrun Environment Doctor")
	fmt.Println("============================")
	fmt.Println()

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Checks still run against defaults so the report stays useful.
		cfg = &config.Config{}
		cfg.Commands.File = "commands.yml"
		cfg.Server.Port = 7345
	}

	report := &DoctorReport{
		Timestamp:   time.Now(),
		Environment: gatherEnvironmentInfo(),
		Results:     []DiagnosticResult{},
	}

	checks := []func(context.Context, *config.Config) DiagnosticResult{
		makeConfigurationCheck(cfgErr),
		checkCommandsDocument,
		checkTargetResolution,
		checkOpenHandler,
		checkPortAvailability,
		checkHistoryStore,
	}

	for _, check := range checks {
		result := check(ctx, cfg)
		report.Results = append(report.Results, result)

		if !doctorVerbose && result.Status == "info" {
			continue
		}
		displayResult(result)
	}

	report.Summary = calculateSummary(report.Results)

	fmt.Println("📊 Summary")
	fmt.Println("==========")
	displaySummary(report.Summary)

	if doctorFormat != "table" {
		fmt.Println("\n📋 Detailed Report")
		fmt.Println("==================")
		if err := outputReport(report, doctorFormat); err != nil {
			return fmt.Errorf("failed to output report: %w", err)
		}
	}

	return nil
}

func gatherEnvironmentInfo() map[string]string {
	env := map[string]string{
		"os":          runtime.GOOS,
		"arch":        runtime.GOARCH,
		"go_version":  runtime.Version(),
		"shell":       os.Getenv("SHELL"),
		"config_file": viper.ConfigFileUsed(),
	}

	if wd, err := os.Getwd(); err == nil {
		env["working_dir"] = wd
	}

	return env
}

func makeConfigurationCheck(cfgErr error) func(context.Context, *config.Config) DiagnosticResult {
	return func(ctx context.Context, cfg *config.Config) DiagnosticResult {
		result := DiagnosticResult{
			Name:     "Configuration",
			Category: "Configuration",
			Status:   "ok",
		}

		if cfgErr != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Configuration has errors: %v", cfgErr)
			result.Suggestion = "Fix .keyrun.yml or remove it to fall back to defaults"
			return result
		}

		if viper.ConfigFileUsed() == "" {
			result.Status = "info"
			result.Message = "No .keyrun.yml found; running on defaults"
			result.Suggestion = "Create .keyrun.yml to pin the commands document and server settings"
			return result
		}

		result.Message = "Configuration file is valid"
		result.Details = map[string]interface{}{
			"commands_file": cfg.Commands.File,
			"server_port":   cfg.Server.Port,
			"watch_enabled": cfg.Watch.Enabled,
			"history":       cfg.History.Enabled,
		}
		return result
	}
}

func checkCommandsDocument(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Commands Document",
		Category: "Commands",
		Status:   "ok",
	}

	path := cfg.Commands.File
	if _, err := os.Stat(path); os.IsNotExist(err) {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Commands document %s does not exist", path)
		result.Suggestion = "Create it, or point commands.file at the right path"
		return result
	}

	commands, err := loader.Load(path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Commands document has errors: %v", err)
		result.Suggestion = "Run 'keyrun validate' for the full diagnostic"
		return result
	}

	result.Message = fmt.Sprintf("%s parses cleanly: %d commands (%s)", path, len(commands), loader.DetectFormat(path))
	result.Details = map[string]interface{}{
		"path":   path,
		"count":  len(commands),
		"format": string(loader.DetectFormat(path)),
	}

	if len(commands) == 0 {
		result.Status = "info"
		result.Message = fmt.Sprintf("%s is valid but has no commands", path)
		result.Suggestion = "Raw URLs and paths still launch; add entries for named commands"
	}
	return result
}

func checkTargetResolution(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Target Resolution",
		Category: "Commands",
		Status:   "ok",
	}

	commands, err := loader.Load(cfg.Commands.File)
	if err != nil {
		result.Status = "info"
		result.Message = "Skipped: commands document not loadable"
		return result
	}

	counts := map[types.TargetKind]int{}
	var unresolved []string
	for _, command := range commands {
		kind := executor.Classify(command.Target)
		counts[kind]++
		if kind == types.TargetExecutable {
			if _, err := exec.LookPath(command.Target); err != nil {
				unresolved = append(unresolved, fmt.Sprintf("%s -> %s", command.Name, command.Target))
			}
		}
	}

	result.Details = map[string]interface{}{
		"urls":        counts[types.TargetURL],
		"paths":       counts[types.TargetPath],
		"executables": counts[types.TargetExecutable],
	}

	if len(unresolved) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d executable target(s) not found on PATH: %s",
			len(unresolved), strings.Join(unresolved, ", "))
		result.Suggestion = "Install the programs or use absolute paths as targets"
		return result
	}

	result.Message = fmt.Sprintf("All %d targets resolve", len(commands))
	return result
}

func checkOpenHandler(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Open Handler",
		Category: "Environment",
		Status:   "ok",
	}

	var opener string
	switch runtime.GOOS {
	case "linux":
		opener = "xdg-open"
	case "darwin":
		opener = "open"
	case "windows":
		// rundll32 ships with Windows.
		result.Message = "URLs and paths open through rundll32"
		return result
	default:
		result.Status = "warning"
		result.Message = fmt.Sprintf("No default open handler on %s", runtime.GOOS)
		result.Suggestion = "URL and path targets will fail; executable targets still work"
		return result
	}

	path, err := exec.LookPath(opener)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s not found; URL and path targets cannot open", opener)
		result.Suggestion = fmt.Sprintf("Install %s for your desktop environment", opener)
		return result
	}

	result.Message = fmt.Sprintf("URLs and paths open through %s", opener)
	result.Details = map[string]interface{}{"path": path}
	return result
}

func checkPortAvailability(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Control Port",
		Category: "Network",
		Status:   "ok",
	}

	port := cfg.Server.Port
	if isPortAvailable(port) {
		result.Message = fmt.Sprintf("Port %d is available", port)
		return result
	}

	result.Status = "warning"
	result.Message = fmt.Sprintf("Port %d is in use (another keyrun instance?)", port)
	result.Suggestion = fmt.Sprintf("Use: keyrun serve --port %d", port+1)
	return result
}

func checkHistoryStore(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Launch History",
		Category: "Storage",
		Status:   "ok",
	}

	if !cfg.History.Enabled {
		result.Status = "info"
		result.Message = "Launch history is disabled"
		return result
	}

	path := cfg.History.File
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			result.Status = "warning"
			result.Message = fmt.Sprintf("Cannot resolve the history path: %v", err)
			return result
		}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "info"
		result.Message = fmt.Sprintf("History store %s will be created on first launch", path)
		return result
	}
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("History store %s is not readable: %v", path, err)
		return result
	}

	result.Message = fmt.Sprintf("History store at %s (%d bytes)", path, info.Size())
	result.Details = map[string]interface{}{"path": path, "size_bytes": info.Size()}
	return result
}

func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

func displayResult(result DiagnosticResult) {
	var icon string
	switch result.Status {
	case "ok":
		icon = "✅"
	case "warning":
		icon = "⚠️"
	case "error":
		icon = "❌"
	case "info":
		icon = "ℹ️"
	default:
		icon = "•"
	}

	fmt.Printf("%s [%s] %s: %s\n", icon, strings.ToUpper(result.Category), result.Name, result.Message)

	if result.Suggestion != "" {
		fmt.Printf("   💡 %s\n", result.Suggestion)
	}

	if doctorVerbose && len(result.Details) > 0 {
		fmt.Printf("   📋 Details: %+v\n", result.Details)
	}

	fmt.Println()
}

func displaySummary(summary ReportSummary) {
	fmt.Printf("Total Checks: %d\n", summary.Total)
	fmt.Printf("✅ OK: %d\n", summary.OK)
	fmt.Printf("⚠️  Warnings: %d\n", summary.Warnings)
	fmt.Printf("❌ Errors: %d\n", summary.Errors)
	fmt.Printf("ℹ️  Info: %d\n", summary.Info)
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{
		Total: len(results),
	}

	for _, result := range results {
		switch result.Status {
		case "ok":
			summary.OK++
		case "warning":
			summary.Warnings++
		case "error":
			summary.Errors++
		case "info":
			summary.Info++
		}
	}

	return summary
}

func outputReport(report *DoctorReport, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
