package main

import (
	"fmt"
	"time"

	"github.com/smallnest/goequip/store"
	"github.com/spf13/cobra"
)

var historyLimit int

func openStore() (*store.Store, error) {
	return store.Open(cfg.DBDir, store.DefaultOptions())
}

var saveCmd = &cobra.Command{
	Use:   "save <report>...",
	Short: "Saves snapshots of reports to the local database.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		for _, arg := range args {
			p, err := openReport(arg)
			if err != nil {
				return err
			}
			snap, err := store.NewSnapshot(p)
			if err != nil {
				return fmt.Errorf("failed to snapshot %s: %w", p.Path, err)
			}
			if err := s.Save(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d rows) as %s\n", snap.Element, snap.Table.Len(), snap.ID)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [element]",
	Short: "Lists saved snapshots of an element, or all elements with snapshots.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			elements, err := s.Elements(cmd.Context())
			if err != nil {
				return err
			}
			if len(elements) == 0 {
				fmt.Fprintln(out, "No snapshots saved.")
			}
			for _, e := range elements {
				fmt.Fprintf(out, "- %s\n", e)
			}
			return nil
		}

		history, err := s.History(cmd.Context(), args[0], historyLimit)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			return fmt.Errorf("%w for %s", store.ErrNoSnapshot, args[0])
		}
		fmt.Fprintf(out, "--- History of %s ---\n", args[0])
		for _, snap := range history {
			fmt.Fprintf(out, "%s  %-24s  %3d rows  %s\n",
				snap.TakenAt.Local().Format(time.DateTime), snap.Status, snap.Table.Len(), snap.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum number of snapshots to show (0 for all)")
}
