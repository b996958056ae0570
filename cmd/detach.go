package cmd

import (
	"fmt"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	detachTicket  string
	detachWorkers int
)

var detachCmd = &cobra.Command{
	Use:   "detach [name]...",
	Short: "Detach media from a ticket",
	Long: `Detach media records from a ticket.

Without names, an interactive fuzzy finder lists the ticket's attachments
(Tab to mark several, Enter to confirm).

Examples:
  tmedia detach --ticket 42
  tmedia detach --ticket 42 Example.jpg`,
	RunE: runDetach,
}

func init() {
	detachCmd.Flags().StringVarP(&detachTicket, "ticket", "t", "", "Ticket id (required)")
	detachCmd.Flags().IntVarP(&detachWorkers, "workers", "w", 0, "Concurrent deletes (default from config, 1 = sequential)")
	detachCmd.MarkFlagRequired("ticket")
}

func runDetach(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	existing, err := trackerClient.ListAttached(ctx, detachTicket)
	if err != nil {
		return fmt.Errorf("failed to load attached media: %w", err)
	}
	if len(existing) == 0 {
		fmt.Println(ui.FormatWarning("Ticket " + detachTicket + " has no attached media."))
		return nil
	}

	var selected []domain.AttachedMedia
	if len(args) == 0 {
		selected, err = pickAttached(existing)
		if err != nil {
			fmt.Println(ui.FormatInfo("Selection cancelled."))
			return nil
		}
	} else {
		selected, err = matchAttached(existing, args)
		if err != nil {
			return err
		}
	}

	urls := make([]string, 0, len(selected))
	for _, rec := range selected {
		urls = append(urls, rec.APIURL)
	}

	workers := detachWorkers
	if workers <= 0 {
		workers = appConfig.DetachWorkers
	}

	report, err := submissionService.Detach(ctx, services.DetachRequest{
		TicketID:   detachTicket,
		APIURLs:    urls,
		MaxWorkers: workers,
	})
	if err != nil {
		return err
	}

	printDetachReport(report, selected)

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d detaches failed", report.Failed, report.Total)
	}
	return nil
}

func printDetachReport(report *services.DetachReport, selected []domain.AttachedMedia) {
	for i, res := range report.Results {
		name := res.APIURL
		if i < len(selected) {
			name = selected[i].Key()
		}
		if res.Success {
			fmt.Println(ui.FormatSuccess("Detached " + name))
			continue
		}
		msg := "Failed " + name
		if res.StatusCode != 0 {
			msg += fmt.Sprintf(" (status %d)", res.StatusCode)
		} else if res.Error != nil {
			msg += ": " + res.Error.Error()
		}
		fmt.Println(ui.FormatError(msg))
	}
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Detached", fmt.Sprintf("%d/%d", report.Succeeded, report.Total)))
	fmt.Println(ui.RenderKeyValue("Result", report.RedirectURL))
}

// matchAttached finds records by canonical title or raw name
func matchAttached(existing []domain.AttachedMedia, names []string) ([]domain.AttachedMedia, error) {
	var out []domain.AttachedMedia
	var missing []string
	for _, arg := range names {
		want := canonicalTitle(arg)
		found := false
		for _, rec := range existing {
			if canonicalTitle(rec.Key()) == want || canonicalTitle(rec.Name) == want {
				out = append(out, rec)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, arg)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("not attached to this ticket: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// pickAttached launches the fuzzy finder over attached records
func pickAttached(existing []domain.AttachedMedia) ([]domain.AttachedMedia, error) {
	idxs, err := fuzzyfinder.FindMulti(
		existing,
		func(i int) string {
			return existing[i].Key()
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			rec := existing[i]

			var s strings.Builder
			s.WriteString(fmt.Sprintf("File: %s\n", ui.StyleBold.Render(rec.Key())))
			if rec.Width > 0 {
				s.WriteString(fmt.Sprintf("Size: %s\n", formatDimensions(rec.Width, rec.Height)))
			}
			s.WriteString("\n")
			if rec.DescriptionURL != "" {
				s.WriteString(ui.StyleHeader.Render("Description") + "\n")
				s.WriteString(rec.DescriptionURL + "\n\n")
			}
			s.WriteString(ui.StyleHeader.Render("Record") + "\n")
			s.WriteString(rec.APIURL + "\n")
			return s.String()
		}),
		fuzzyfinder.WithHeader("Tab: mark  Enter: detach"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AttachedMedia, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, existing[i])
	}
	return out, nil
}
