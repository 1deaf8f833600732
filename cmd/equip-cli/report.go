package main

import (
	"fmt"

	"github.com/smallnest/goequip/render"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <report>",
	Short: "Prints the element name and operation status of a report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openReport(args[0])
		if err != nil {
			return err
		}
		s, err := p.Describe()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <report>",
	Short: "Prints the result of the operation recorded in a report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openReport(args[0])
		if err != nil {
			return err
		}
		status, err := p.ResultOfOperation()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), status)
		return nil
	},
}

var tableCmd = &cobra.Command{
	Use:   "table <report>",
	Short: "Renders the cell table of a report.",
	Long: `The table command parses the header and data rows of a report and writes
the resulting table in the format chosen with --format (text, json, yaml,
markdown or xlsx). The xlsx output is binary and should be redirected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openReport(args[0])
		if err != nil {
			return err
		}
		view, err := render.NewView(p)
		if err != nil {
			return err
		}
		w, err := render.New(cfg.Format, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return w.Write(view)
	},
}

var columnCmd = &cobra.Command{
	Use:   "column <report> <column> [key]",
	Short: "Prints the values of a column, or a single cell when a key is given.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openReport(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 3 {
			cell, err := p.GetCell(args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cell)
			return nil
		}

		values, err := p.GetColumn(args[1])
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintln(out, v)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <report> <column>",
	Short: "Prints summary statistics of the numeric values in a column.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openReport(args[0])
		if err != nil {
			return err
		}
		table, err := p.ToTable()
		if err != nil {
			return err
		}
		cs, err := table.Stats(args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "--- %s ---\n", cs.Column)
		fmt.Fprintf(out, "Count:   %d\n", cs.Count)
		if cs.Skipped > 0 {
			fmt.Fprintf(out, "Skipped: %d\n", cs.Skipped)
		}
		fmt.Fprintf(out, "Min:     %g\n", cs.Min)
		fmt.Fprintf(out, "Max:     %g\n", cs.Max)
		fmt.Fprintf(out, "Mean:    %g\n", cs.Mean)
		fmt.Fprintf(out, "Median:  %g\n", cs.Median)
		fmt.Fprintf(out, "StdDev:  %g\n", cs.StdDev)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(columnCmd)
	rootCmd.AddCommand(statsCmd)
}
