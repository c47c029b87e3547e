package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent supervision events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.hist == nil {
			return errors.New("history is disabled in the configuration")
		}

		events, err := a.hist.Recent(historyLimit)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recorded events.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tRUN\tEVENT\tDETAIL")
		fmt.Fprintln(w, "----\t---\t-----\t------")

		for _, e := range events {
			runID := e.RunID
			if len(runID) > 8 {
				runID = runID[:8]
			}
			detail := e.Detail
			if detail == "" {
				detail = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.At.Local().Format("2006-01-02 15:04:05"), runID, e.Kind, detail)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of events to show")
}
