package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var ackComment string

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Add or remove ticket acknowledgments",
}

var ackAddCmd = &cobra.Command{
	Use:   "add <ticket> <ack-type>",
	Short: "Add an acknowledgment to a ticket",
	Long: `Add an acknowledgment of the given type to a ticket.

Examples:
  tmedia ack add 42 content
  tmedia ack add 42 precontent --comment "Agreement signed"`,
	Args: cobra.ExactArgs(2),
	RunE: runAckAdd,
}

var ackRemoveCmd = &cobra.Command{
	Use:     "remove <ticket> <ack-id>",
	Aliases: []string{"rm"},
	Short:   "Remove an acknowledgment from a ticket",
	Args:    cobra.ExactArgs(2),
	RunE:    runAckRemove,
}

func init() {
	ackAddCmd.Flags().StringVar(&ackComment, "comment", "", "Comment stored with the acknowledgment")

	ackCmd.AddCommand(ackAddCmd)
	ackCmd.AddCommand(ackRemoveCmd)
}

func runAckAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	id, err := ackService.Add(ctx, services.AddAckRequest{
		TicketID: args[0],
		AckType:  args[1],
		Comment:  ackComment,
	})
	if err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Added %s ack to ticket %s", args[1], args[0])))
	fmt.Println(ui.RenderKeyValue("Ack ID", strconv.Itoa(id)))
	return nil
}

func runAckRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	if err := ackService.Remove(ctx, args[0], args[1]); err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Removed ack %s from ticket %s", args[1], args[0])))
	return nil
}
