package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warefleet/agvsim/core/grid"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Layout related commands",
}

var layoutCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a layout file and print its dimensions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLayoutCheck,
}

func init() {
	layoutCmd.AddCommand(layoutCheckCmd)
	rootCmd.AddCommand(layoutCmd)
}

func runLayoutCheck(cmd *cobra.Command, args []string) error {
	var rows []string
	if len(args) == 1 {
		loaded, err := grid.LoadLayout(args[0])
		if err != nil {
			return fmt.Errorf("load layout: %w", err)
		}
		rows = loaded
	} else {
		rows = grid.DefaultLayout()
	}
	g, feats, err := grid.Build(rows)
	if err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%dx%d grid\n", g.Width(), g.Height())
	fmt.Fprintf(out, "shelves:  %d\n", len(feats.Shelves))
	fmt.Fprintf(out, "dropoffs: %d\n", len(feats.Dropoffs))
	fmt.Fprintf(out, "chargers: %d\n", len(feats.Chargers))
	if len(feats.Shelves) == 0 || len(feats.Dropoffs) == 0 {
		return fmt.Errorf("layout has no task endpoints")
	}
	if len(feats.Chargers) == 0 {
		fmt.Fprintln(out, "warning: no charging stations")
	}
	return nil
}
