package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/grovetools/core/cli"
	"github.com/spf13/cobra"

	"github.com/finvault/chief/pkg/assistant"
)

var (
	actionsTranscript string
	actionsStatus     string
)

func GetActionsCommand() *cobra.Command {
	actionsCmd := &cobra.Command{
		Use:   "actions",
		Short: "List actions tracked in a session transcript",
		Long: `Reads a saved session transcript and lists its actions, pending and settled.

Example:
  chief actions -s ~/notes/budget-review.md --status pending`,
		RunE: runActions,
	}

	actionsCmd.Flags().StringVarP(&actionsTranscript, "transcript", "s", "", "Path to the session transcript file (required)")
	actionsCmd.Flags().StringVar(&actionsStatus, "status", "", "Filter by status (pending, approved, rejected, executed, failed)")
	actionsCmd.MarkFlagRequired("transcript")

	return actionsCmd
}

func runActions(cmd *cobra.Command, args []string) error {
	_, _, actions, err := assistant.LoadTranscript(actionsTranscript)
	if err != nil {
		return err
	}

	if actionsStatus != "" {
		filtered := actions[:0]
		for _, a := range actions {
			if string(a.Status) == actionsStatus {
				filtered = append(filtered, a)
			}
		}
		actions = filtered
	}

	if len(actions) == 0 {
		fmt.Println("No actions found.")
		return nil
	}

	opts := cli.GetOptions(cmd)
	if opts.JSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(actions)
	}

	printActionTable(os.Stdout, actions)
	return nil
}

func printActionTable(out io.Writer, actions []assistant.PendingAction) {
	if len(actions) == 0 {
		fmt.Fprintln(out, "No actions tracked.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tRISK\tSTATUS\tDESCRIPTION")
	for _, a := range actions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Type, a.RiskLevel, a.Status, a.Description)
	}
	w.Flush()
}
