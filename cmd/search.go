package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	searchTicket   string
	searchMode     string
	searchLimit    int
	searchCategory string
	searchContinue string
	searchAll      bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:     "search [term]",
	Aliases: []string{"s"},
	Short:   "Search Wikimedia Commons by uploader or file name prefix (alias: s)",
	Long: `Search Wikimedia Commons and list files that are not yet attached to a ticket.

Modes:
  user       Files uploaded by an account, newest first. The term defaults to
             the Mediawiki username from your tracker profile.
  filename   Files whose name starts with the term.

Examples:
  tmedia search --ticket 42
  tmedia search --mode filename "Prague Castle"
  tmedia search Alice --category Animals --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchTicket, "ticket", "t", "", "Hide media already attached to this ticket")
	addSearchFlags(searchCmd, &searchMode, &searchLimit, &searchCategory)
	searchCmd.Flags().StringVar(&searchContinue, "continue", "", "Resume from a continuation token")
	searchCmd.Flags().BoolVarP(&searchAll, "all", "a", false, "Fetch every page")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

// addSearchFlags registers the flags shared by search, pick and gallery
func addSearchFlags(cmd *cobra.Command, mode *string, limit *int, category *string) {
	cmd.Flags().StringVarP(mode, "mode", "m", "", "Search mode: user or filename (default from config)")
	cmd.Flags().IntVarP(limit, "limit", "n", 0, "Results per page (default from config)")
	cmd.Flags().StringVarP(category, "category", "c", "", "Only keep files in this category")
}

// buildQuery resolves the first-page query from flags, args, config and profile
func buildQuery(ctx context.Context, modeFlag string, args []string, limit int, category string) (domain.SearchQuery, error) {
	mode, err := resolveMode(modeFlag)
	if err != nil {
		return domain.SearchQuery{}, err
	}

	override := appConfig.MediawikiUsername
	if len(args) > 0 {
		override = args[0]
	}
	term, err := profileService.DefaultTerm(ctx, mode, override)
	if err != nil {
		return domain.SearchQuery{}, err
	}
	if mode == domain.ModeByFilenamePrefix && len(args) > 0 {
		term = args[0]
	}
	if mode == domain.ModeByUploader && term == "" {
		return domain.SearchQuery{}, fmt.Errorf("no Mediawiki username: pass one as an argument or set mediawiki_username")
	}

	if limit <= 0 {
		limit = appConfig.SearchLimit
	}
	if category == "" {
		category = appConfig.Category
	}

	return domain.SearchQuery{
		Mode:     mode,
		Term:     term,
		Limit:    limit,
		Category: category,
	}, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	q, err := buildQuery(ctx, searchMode, args, searchLimit, searchCategory)
	if err != nil {
		return err
	}
	q.Continue = searchContinue

	browse := newBrowseService(newCLINotifier(searchJSON))
	if searchTicket != "" {
		if _, err := browse.LoadTicket(ctx, searchTicket); err != nil {
			return err
		}
	}

	results, err := browse.Search(ctx, q)
	if err != nil {
		return err
	}

	for searchAll && results.CanLoadMore() {
		if _, err := browse.LoadMore(ctx); err != nil {
			return err
		}
	}

	if searchJSON {
		return printJSON(struct {
			Items    []domain.MediaItem `json:"items"`
			Continue string             `json:"continue,omitempty"`
		}{results.Items, results.Continue})
	}

	if len(results.Items) == 0 {
		return nil
	}

	fmt.Println(ui.FormatTitle(fmt.Sprintf("%s: %s", q.Mode.Label(), q.Term)))
	fmt.Println()
	fmt.Print(renderMediaTable(results.Items))
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d files", len(results.Items))))

	if results.CanLoadMore() {
		fmt.Println(ui.FormatMuted("More results available: --continue " + strconv.Quote(results.Continue)))
	}

	return nil
}

func renderMediaTable(items []domain.MediaItem) string {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "#", Align: "right"},
		{Header: "TITLE", MaxWidth: 60},
		{Header: "SIZE", Align: "right"},
		{Header: "UPLOADED"},
	})
	for i, item := range items {
		table.AddRow([]string{
			strconv.Itoa(i + 1),
			item.Title(),
			formatDimensions(item.Width, item.Height),
			formatTimestamp(item.UploadTimestamp),
		})
	}
	return table.Render()
}

func formatDimensions(w, h int) string {
	if w == 0 && h == 0 {
		return "-"
	}
	return fmt.Sprintf("%d×%d", w, h)
}

// formatTimestamp trims an ISO timestamp to its date
func formatTimestamp(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	if ts == "" {
		return "-"
	}
	return ts
}
