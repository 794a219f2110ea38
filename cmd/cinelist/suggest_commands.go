package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinelist/internal/movie"
	"cinelist/internal/suggestions"
	"cinelist/internal/textutil"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate a fresh set of suggestions from your lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "generate", func(s *session) error {
				engine, err := s.engine(true)
				if err != nil {
					return err
				}
				outcome, err := engine.Generate(s.ctx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, struct {
						Status      string         `json:"status"`
						Suggestions []movie.Record `json:"suggestions"`
						Dropped     int            `json:"dropped"`
					}{outcome.Status.String(), outcome.Suggestions, outcome.Dropped})
				}
				out := cmd.OutOrStdout()
				if outcome.Status == suggestions.StatusNoInput {
					fmt.Fprintln(out, "Add movies to your to-watch or watched list to get suggestions")
					return nil
				}
				if len(outcome.Suggestions) == 0 {
					fmt.Fprintln(out, "No suggestions this time; try again")
					return nil
				}
				printRecords(out, outcome.Suggestions, false, true)
				if outcome.Dropped > 0 {
					fmt.Fprintf(out, "%d candidate(s) skipped (already saved or not found)\n", outcome.Dropped)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(newSuggestListCommand(ctx))
	cmd.AddCommand(newSuggestReplaceCommand(ctx))
	cmd.AddCommand(newSuggestPromoteCommand(ctx))
	cmd.AddCommand(newSuggestDismissCommand(ctx))
	return cmd
}

func newSuggestListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the current suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "suggest_list", func(s *session) error {
				engine, err := s.engine(false)
				if err != nil {
					return err
				}
				current, err := engine.Current(s.ctx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, current)
				}
				out := cmd.OutOrStdout()
				if len(current) == 0 {
					fmt.Fprintln(out, "No suggestions yet; run `cinelist suggest`")
					return nil
				}
				printRecords(out, current, false, true)
				return nil
			})
		},
	}
}

func newSuggestReplaceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <id|title>",
		Short: "Swap one suggestion for a new one in the same position",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "replace", func(s *session) error {
				target, err := s.resolveID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				engine, err := s.engine(true)
				if err != nil {
					return err
				}
				outcome, err := engine.ReplaceOne(s.ctx, target)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, struct {
						Applied     bool           `json:"applied"`
						Index       int            `json:"index"`
						Suggestion  movie.Record   `json:"suggestion"`
						Suggestions []movie.Record `json:"suggestions"`
					}{outcome.Applied, outcome.Index, outcome.Suggestion, outcome.Suggestions})
				}
				out := cmd.OutOrStdout()
				if !outcome.Applied {
					fmt.Fprintf(out, "%s is no longer suggested; replacement discarded\n", target)
					return nil
				}
				fmt.Fprintf(out, "Replaced #%d with %s (%s)\n", outcome.Index+1,
					textutil.DisplayTitle(outcome.Suggestion.Title), orDash(outcome.Suggestion.Year))
				printRecords(out, outcome.Suggestions, false, true)
				return nil
			})
		},
	}
}

func newSuggestPromoteCommand(ctx *commandContext) *cobra.Command {
	var rating int
	var watched bool

	cmd := &cobra.Command{
		Use:   "promote <id|title>",
		Short: "Move a suggestion into your to-watch list (or watched with --watched)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := suggestions.TargetToWatch
			if watched || cmd.Flags().Changed("rating") {
				target = suggestions.TargetWatched
			}
			return ctx.withSession(cmd, "promote", func(s *session) error {
				id, err := s.resolveID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				engine, err := s.engine(false)
				if err != nil {
					return err
				}
				rec, err := engine.Promote(s.ctx, id, target, rating)
				if err != nil {
					return err
				}
				if target == suggestions.TargetWatched {
					return reportRecord(cmd, ctx, rec, "Added %s to your watched list")
				}
				return reportRecord(cmd, ctx, rec, "Added %s to your to-watch list")
			})
		},
	}
	cmd.Flags().BoolVar(&watched, "watched", false, "Add to the watched list instead (requires --rating)")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Your rating from 1 to 10")
	return cmd
}

func newSuggestDismissCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <id|title>",
		Short: "Drop a suggestion without replacing it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "dismiss", func(s *session) error {
				id, err := s.resolveID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				engine, err := s.engine(false)
				if err != nil {
					return err
				}
				remaining, err := engine.Dismiss(s.ctx, id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, remaining)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s; %d suggestion(s) left\n", id, len(remaining))
				return nil
			})
		},
	}
}
