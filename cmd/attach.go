package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	attachTicket string
	attachOpen   bool
)

var attachCmd = &cobra.Command{
	Use:   "attach <name>...",
	Short: "Attach Commons files to a ticket",
	Long: `Attach one or more Wikimedia Commons files to a ticket in a single request.

Names may be given with or without the "File:" prefix.

Examples:
  tmedia attach --ticket 42 Example.jpg "File:Old Town.png"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAttach,
}

func init() {
	attachCmd.Flags().StringVarP(&attachTicket, "ticket", "t", "", "Ticket id (required)")
	attachCmd.Flags().BoolVarP(&attachOpen, "open", "o", false, "Open the result page in the browser")
	attachCmd.MarkFlagRequired("ticket")
}

func runAttach(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	names := make([]string, 0, len(args))
	for _, arg := range args {
		if name := canonicalTitle(arg); name != "" {
			names = append(names, name)
		}
	}

	fmt.Println(ui.FormatRocket(fmt.Sprintf("Attaching %d files to ticket %s...", len(names), attachTicket)))

	resp, err := submissionService.Attach(ctx, services.AttachRequest{
		TicketID: attachTicket,
		Names:    names,
	})
	if err != nil {
		return err
	}

	if resp.Error != nil {
		fmt.Println(ui.FormatError("Attach failed: " + resp.Error.Error()))
	} else {
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Attached %d files", resp.Count)))
		for _, name := range names {
			fmt.Println("  " + ui.FormatMedia(name))
		}
	}
	fmt.Println(ui.RenderKeyValue("Result", resp.RedirectURL))

	if attachOpen {
		if err := OpenFile(resp.RedirectURL); err != nil {
			fmt.Println(ui.FormatMuted("(Could not open browser)"))
		}
	}

	if resp.Error != nil {
		return fmt.Errorf("attach failed")
	}
	return nil
}
