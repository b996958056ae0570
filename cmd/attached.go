package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	attachedTicket string
	attachedJSON   bool
)

var attachedCmd = &cobra.Command{
	Use:     "attached",
	Aliases: []string{"ls"},
	Short:   "List media attached to a ticket (alias: ls)",
	RunE:    runAttached,
}

func init() {
	attachedCmd.Flags().StringVarP(&attachedTicket, "ticket", "t", "", "Ticket id (required)")
	attachedCmd.Flags().BoolVar(&attachedJSON, "json", false, "Output as JSON")
	attachedCmd.MarkFlagRequired("ticket")
}

type attachedRow struct {
	Title    string `json:"title"`
	ThumbURL string `json:"thumb_url"`
	APIURL   string `json:"url"`
}

func runAttached(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	browse := newBrowseService(newCLINotifier(attachedJSON))
	existing, err := browse.LoadTicket(ctx, attachedTicket)
	if err != nil {
		return err
	}

	cards := browse.ExistingCards(ctx)
	rows := make([]attachedRow, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, attachedRow{Title: c.Item.Title(), ThumbURL: c.ThumbURL, APIURL: c.APIURL})
	}

	if attachedJSON {
		return printJSON(rows)
	}

	if len(existing) == 0 {
		fmt.Println(ui.FormatWarning("No media attached to ticket " + attachedTicket))
		return nil
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "#", Align: "right"},
		{Header: "TITLE", MaxWidth: 50},
		{Header: "THUMBNAIL", MaxWidth: 80},
	})
	for i, row := range rows {
		table.AddRow([]string{strconv.Itoa(i + 1), row.Title, row.ThumbURL})
	}

	fmt.Println(ui.FormatTitle(ui.IconTicket + " Ticket " + attachedTicket))
	fmt.Println()
	fmt.Print(table.Render())

	if skipped := len(existing) - len(rows); skipped > 0 {
		fmt.Println()
		fmt.Println(ui.FormatWarning(fmt.Sprintf("%d attachments have no resolvable thumbnail", skipped)))
	}
	return nil
}
