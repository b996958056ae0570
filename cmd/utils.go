package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

// GetPreferredEditor returns the editor command from env or default
func GetPreferredEditor() string {
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}

// OpenFile opens a file or URL using the OS default application.
func OpenFile(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}

	// Start() detaches so tmedia can exit while the browser stays open
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open '%s': %w", target, err)
	}

	return nil
}

// canonicalTitle adds the File: namespace when the user typed a bare name
func canonicalTitle(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "File:") {
		return name
	}
	return "File:" + name
}

// resolveMode picks the flag value, falling back to the configured default
func resolveMode(flagValue string) (domain.SearchMode, error) {
	if flagValue == "" {
		flagValue = appConfig.DefaultMode
	}
	return domain.ParseSearchMode(flagValue)
}

// printJSON writes v as indented JSON, highlighted when stdout is a terminal
func printJSON(v any) error {
	out, err := ui.RenderJSON(v, isTerminal(os.Stdout))
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	fmt.Println(out)
	return nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// cliNotifier prints service messages as styled lines
type cliNotifier struct {
	out io.Writer
}

// newCLINotifier writes to stderr when stdout carries machine-readable output
func newCLINotifier(jsonOutput bool) cliNotifier {
	if jsonOutput {
		return cliNotifier{out: os.Stderr}
	}
	return cliNotifier{out: os.Stdout}
}

func (n cliNotifier) Notify(level ports.Level, message string) {
	switch level {
	case ports.LevelDanger:
		fmt.Fprintln(n.out, ui.FormatError(message))
	case ports.LevelWarning:
		fmt.Fprintln(n.out, ui.FormatWarning(message))
	default:
		fmt.Fprintln(n.out, ui.FormatInfo(message))
	}
}
