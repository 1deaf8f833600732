package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/smallnest/goequip"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "Lists all readable reports in a directory.",
	Long: `The list command scans a directory (default: --reports-dir) for report
files and prints the element name and operation status of each one found.
Files that are not valid reports are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args, 0)
		reports, err := goequip.ParseReports(cmd.Context(), dir, cfg.ParserOptions()...)
		if err != nil {
			return fmt.Errorf("could not parse reports in directory '%s': %w", dir, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "--- Reports found in %s ---\n", dir)
		if len(reports) == 0 {
			fmt.Fprintln(out, "No valid reports found.")
			return nil
		}
		for _, p := range reports {
			printSummary(cmd, p)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [dir] <query>",
	Short: "Searches reports by element name or file name.",
	Long: `The search command scans a directory for reports and returns those whose
element name or file name contains the query. The search is case-insensitive.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.ReportsDir
		query := args[0]
		if len(args) == 2 {
			dir, query = args[0], args[1]
		}
		query = strings.ToLower(query)

		reports, err := goequip.ParseReports(cmd.Context(), dir, cfg.ParserOptions()...)
		if err != nil {
			return fmt.Errorf("could not parse reports in directory '%s': %w", dir, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "--- Searching for '%s' in %s ---\n", query, dir)
		foundCount := 0
		for _, p := range reports {
			element := strings.ToLower(p.ElementName)
			name := strings.ToLower(filepath.Base(p.Path))
			if strings.Contains(element, query) || strings.Contains(name, query) {
				printSummary(cmd, p)
				foundCount++
			}
		}
		if foundCount == 0 {
			fmt.Fprintln(out, "No matching reports found.")
		}
		return nil
	},
}

func printSummary(cmd *cobra.Command, p *goequip.ReportParser) {
	status, err := p.ResultOfOperation()
	if err != nil {
		status = "unavailable"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "- %-20s: %s (%s)\n", p.ElementName, status, filepath.Base(p.Path))
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}
