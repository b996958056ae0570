package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your tmedia setup",
	Long: `Diagnose issues with your tmedia setup.

Checks for:
  - Configuration file and tracker URL
  - Session cookie and tracker profile
  - The tracker's Mediawiki proxy
  - Clipboard, browser opener and editor`,
	Run: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println(ui.FormatTitle("tmedia doctor"))
	fmt.Println()

	// 1. Configuration
	checkStep("Configuration File", func() error {
		if _, err := os.Stat(configPath()); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (run 'tmedia config')", configPath())
		}
		return nil
	})

	connected := checkStep("Tracker URL", connect)

	checkStep("Session Cookie", func() error {
		if appConfig.SessionID == "" {
			return fmt.Errorf("session_id not set; requests are anonymous")
		}
		return nil
	})

	// 2. Remote services
	if connected {
		ctx, cancel := getContext()
		defer cancel()

		var username string
		checkStep("Tracker Profile", func() error {
			term, err := profileService.DefaultTerm(ctx, domain.ModeByUploader, appConfig.MediawikiUsername)
			if err != nil {
				return err
			}
			if term == "" {
				return fmt.Errorf("no Mediawiki username on the profile")
			}
			username = term
			return nil
		})

		checkStep("Mediawiki Proxy", func() error {
			q := domain.SearchQuery{Mode: domain.ModeByFilenamePrefix, Term: "A", Limit: 1}
			if username != "" {
				q = domain.SearchQuery{Mode: domain.ModeByUploader, Term: username, Limit: 1}
			}
			params, err := services.BuildSearchParams(q)
			if err != nil {
				return err
			}
			list, err := mediaRepo.ListImages(ctx, params)
			if err != nil {
				return err
			}
			if list.APIError != nil {
				return list.APIError
			}
			return nil
		})
	}

	// 3. Environment
	checkStep("Clipboard", func() error {
		if clipboard.Unsupported {
			return fmt.Errorf("no clipboard utility found ('tmedia thumb' will only print)")
		}
		return nil
	})

	checkStep("Browser Opener", func() error {
		opener := "xdg-open"
		switch runtime.GOOS {
		case "darwin":
			opener = "open"
		case "windows":
			return nil
		}
		if _, err := exec.LookPath(opener); err != nil {
			return fmt.Errorf("%s not found in PATH", opener)
		}
		return nil
	})

	checkStep("EDITOR Variable", func() error {
		if os.Getenv("EDITOR") == "" {
			return fmt.Errorf("not set (using fallback 'vi')")
		}
		return nil
	})
}

// checkStep runs a check function, prints the result and reports success
func checkStep(name string, check func() error) bool {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.FormatSuccess("✔"), name)
		return true
	}
	fmt.Printf("%s %s\n", ui.FormatError("✘"), name)
	fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	return false
}
