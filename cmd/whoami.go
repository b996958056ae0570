package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var whoamiJSON bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show your tracker profile, preferences and languages",
	RunE:  runWhoami,
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "Output as JSON")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	summary, err := profileService.Load(ctx)
	if err != nil {
		return err
	}

	if whoamiJSON {
		return printJSON(summary)
	}

	p := summary.Profile
	fmt.Println(ui.FormatTitle("Tracker Profile"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("User", p.User))
	fmt.Println(ui.RenderKeyValue("Mediawiki", orDash(p.MediawikiUsername)))
	fmt.Println(ui.RenderKeyValue("Chapter", orDash(p.ChapterUsername)))
	fmt.Println(ui.RenderKeyValue("Display items", strconv.Itoa(p.DisplayItems)))
	fmt.Println(ui.RenderKeyValue("Tracker", appConfig.TrackerURL))

	if len(summary.Preferences) > 0 {
		fmt.Println()
		fmt.Println(ui.StyleHeader.Render("Preferences"))
		for _, pref := range summary.Preferences {
			fmt.Println(ui.RenderKeyValue("Muted notifications", orDash(pref.MutedNotifications)))
			fmt.Println(ui.RenderKeyValue("Muted acks", orDash(pref.MutedAck)))
		}
	}

	if len(summary.Languages) > 0 {
		codes := make([]string, 0, len(summary.Languages))
		for code := range summary.Languages {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		fmt.Println()
		fmt.Println(ui.StyleHeader.Render(fmt.Sprintf("Languages (%d)", len(codes))))
		for _, code := range codes {
			fmt.Println(ui.RenderKeyValue(code, services.LanguageName(summary.Languages, code)))
		}
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
