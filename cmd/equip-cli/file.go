package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/smallnest/goequip/tool"
	"github.com/spf13/cobra"
)

var writeMode string

func fileOptions(cmd *cobra.Command) []tool.FileOption {
	var confirmer tool.Confirmer = tool.NewPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	if cfg.AssumeYes {
		confirmer = tool.StaticConfirmer(tool.ChoiceYes)
	}
	return []tool.FileOption{
		tool.WithLogger(*zerolog.Ctx(cmd.Context())),
		tool.WithConfirmer(confirmer),
	}
}

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Reads, writes and deletes plain files with confirmation prompts.",
}

var fileReadCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Prints the content of a file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := tool.NewFileReader(args[0], fileOptions(cmd)...).Read()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	},
}

var fileWriteCmd = &cobra.Command{
	Use:   "write <path> <content>...",
	Short: "Writes content to a file, appending by default.",
	Long: `The write command writes its remaining arguments, joined by spaces and
followed by a newline, to a file. With --mode w an existing file is
overwritten after confirmation; the prompt also offers to append instead.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := tool.ParseWriteMode(writeMode)
		if err != nil {
			return err
		}
		content := strings.Join(args[1:], " ")
		return tool.NewFileWriter(args[0], fileOptions(cmd)...).Write(content, mode)
	},
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete <path>...",
	Short: "Deletes files after confirmation.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := fileOptions(cmd)
		for _, path := range args {
			if err := tool.NewFileDeleter(path, opts...).Delete(); err != nil {
				return err
			}
		}
		return nil
	},
}

var fileSizeCmd = &cobra.Command{
	Use:   "size <path>",
	Short: "Prints the size of a file in bytes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := tool.Size(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), size)
		return nil
	},
}

var fileListCmd = &cobra.Command{
	Use:   "list <list-file>",
	Short: "Prints the files named in a list file with their sizes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := tool.FromListFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range names {
			size, err := tool.Size(name)
			if err != nil {
				fmt.Fprintf(out, "- %s: missing\n", name)
				continue
			}
			fmt.Fprintf(out, "- %s: %d bytes\n", name, size)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fileCmd)
	fileCmd.AddCommand(fileReadCmd, fileWriteCmd, fileDeleteCmd, fileSizeCmd, fileListCmd)
	fileWriteCmd.Flags().StringVar(&writeMode, "mode", string(tool.ModeAppend), "Write mode: a (append) or w (overwrite)")
}
