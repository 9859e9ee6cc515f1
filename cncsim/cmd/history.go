package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cncsim/datarecording"
)

var historyCmd = &cobra.Command{
	Use:   "history <recording>",
	Short: "Print the transitions stored in a recording.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return printHistory(ctx, cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func printHistory(ctx context.Context, out io.Writer, path string) error {
	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	entries, err := datarecording.ReadTransitions(ctx, reader)
	if err != nil {
		return fmt.Errorf("read transitions from %s: %w", path, err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTRIGGER\tOPERATION\tSTATUS\tCYCLE\tPROGRESS\tREMAINING")

	for _, e := range entries {
		op := e.Operation
		if op == "" {
			op = "-"
		}

		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s -> %s\t%s -> %s\t%d%%\t%ds\n",
			e.Time, e.Trigger, op,
			e.BeforeStatus, e.AfterStatus,
			e.BeforeCycle, e.AfterCycle,
			e.AfterProgress, e.RemainingSeconds)
	}

	return w.Flush()
}
