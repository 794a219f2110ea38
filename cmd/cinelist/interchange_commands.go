package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cinelist/internal/config"
	"cinelist/internal/fileutil"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write your lists and suggestions to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "export", func(s *session) error {
				target := strings.TrimSpace(outputPath)
				if target == "" || target == "-" {
					return s.store.Export(s.ctx, cmd.OutOrStdout())
				}
				target, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				err = fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
					return s.store.Export(s.ctx, w)
				})
				if err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all saved data with the contents of an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("import replaces all saved movies; rerun with --yes to confirm")
			}
			return ctx.withSession(cmd, "import", func(s *session) error {
				var in io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					path, err := config.ExpandPath(args[0])
					if err != nil {
						return fmt.Errorf("resolve import path: %w", err)
					}
					file, err := os.Open(path)
					if err != nil {
						return fmt.Errorf("open import file: %w", err)
					}
					defer file.Close()
					in = file
				}
				state, err := s.store.Import(s.ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d to watch, %d watched, %d suggestions\n",
					len(state.ToWatch), len(state.Watched), len(state.Suggestions))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing the current data")
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all saved movies, suggestions, and the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes all saved data; rerun with --yes to confirm")
			}
			return ctx.withSession(cmd, "reset", func(s *session) error {
				if err := s.store.Reset(s.ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All saved data deleted")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting all data")
	return cmd
}
