package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smallnest/goequip/assistant"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <report> <question>...",
	Short: "Answers a question about a report with an OpenAI-compatible model.",
	Long: `The ask command sends a question about a report to an OpenAI-compatible
chat model. The model looks up columns, cells and the operation status through
tool calls and answers in plain text.

Requires OPENAI_API_KEY (or GOEQUIP_API_KEY) to be set.
You can specify a custom model and API base URL using flags.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.APIKey == "" {
			return errors.New("OPENAI_API_KEY environment variable is not set")
		}

		p, err := openReport(args[0])
		if err != nil {
			return err
		}

		client := assistant.NewClient(cfg.APIKey, cfg.APIBase)
		answer, err := assistant.New(client, cfg.Model).Ask(cmd.Context(), p, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("failed to answer: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
