package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinelist/internal/movie"
	"cinelist/internal/services"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var year int

	cmd := &cobra.Command{
		Use:   "show [id|title]",
		Short: "Show movie details and make it the selected movie",
		Long:  "Without an argument, shows the currently selected movie.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "show", func(s *session) error {
				if len(args) == 0 {
					state, err := s.store.Load(s.ctx)
					if err != nil {
						return err
					}
					if state.SelectedMovie == nil {
						if ctx.jsonOutput() {
							return writeJSON(cmd, nil)
						}
						fmt.Fprintln(cmd.OutOrStdout(), "No movie selected")
						return nil
					}
					return writeDetail(cmd, ctx, *state.SelectedMovie, "")
				}

				rec, where, err := s.findOrLookup(strings.Join(args, " "), year)
				if err != nil {
					return err
				}
				if refresh && where != "" {
					if rec, err = s.refresh(rec); err != nil {
						return err
					}
				}
				if _, err := s.library.Select(s.ctx, rec); err != nil {
					return err
				}
				return writeDetail(cmd, ctx, rec, where)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch full details from the metadata provider for a saved movie")
	cmd.Flags().IntVar(&year, "year", 0, "Release year used when looking up by title")
	return cmd
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	var clearFlag bool

	cmd := &cobra.Command{
		Use:   "select [id|title]",
		Short: "Select a saved or suggested movie, or clear the selection",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearFlag && len(args) == 0 {
				return errors.New("select requires a movie or --clear")
			}
			return ctx.withSession(cmd, "select", func(s *session) error {
				out := cmd.OutOrStdout()
				if clearFlag {
					if _, err := s.library.ClearSelection(s.ctx); err != nil {
						return err
					}
					fmt.Fprintln(out, "Selection cleared")
					return nil
				}
				id, err := s.resolveID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				rec, _, err := s.library.Find(s.ctx, id)
				if err != nil {
					return err
				}
				if _, err := s.library.Select(s.ctx, rec); err != nil {
					return err
				}
				return reportRecord(cmd, ctx, rec, "Selected %s")
			})
		},
	}
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Clear the current selection")
	return cmd
}

// findOrLookup prefers the stored copy of a movie and falls back to the
// metadata provider. where is empty for movies that are not stored.
func (s *session) findOrLookup(arg string, year int) (movie.Record, string, error) {
	id, err := s.resolveID(arg)
	switch {
	case err == nil:
		rec, loc, err := s.library.Find(s.ctx, id)
		if err != nil {
			return movie.Record{}, "", err
		}
		return rec, string(loc), nil
	case errors.Is(err, services.ErrNotFound):
		rec, err := s.lookupRecord(arg, year)
		return rec, "", err
	default:
		return movie.Record{}, "", err
	}
}

func (s *session) refresh(rec movie.Record) (movie.Record, error) {
	meta, err := s.metadata()
	if err != nil {
		return movie.Record{}, err
	}
	details, err := meta.FetchDetails(s.ctx, rec.ID)
	if err != nil {
		return movie.Record{}, err
	}
	if details == nil {
		return rec, nil
	}
	if _, err := s.library.Refresh(s.ctx, *details); err != nil {
		return movie.Record{}, err
	}
	updated, _, err := s.library.Find(s.ctx, rec.ID)
	if errors.Is(err, services.ErrNotFound) {
		return rec.MergeDetails(*details), nil
	}
	return updated, err
}

func writeDetail(cmd *cobra.Command, ctx *commandContext, rec movie.Record, where string) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, struct {
			movie.Record
			Location string `json:"location,omitempty"`
		}{rec, where})
	}
	printDetail(cmd.OutOrStdout(), rec, where)
	return nil
}
