package main

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinelist/internal/library"
	"cinelist/internal/movie"
	"cinelist/internal/services"
	"cinelist/internal/textutil"
)

var externalIDPattern = regexp.MustCompile(`^tt\d{7,}$`)

func looksLikeID(value string) bool {
	return externalIDPattern.MatchString(strings.TrimSpace(value))
}

func newListCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newAddCommand(ctx),
		newWatchedCommand(ctx),
		newUnwatchCommand(ctx),
		newRateCommand(ctx),
		newRemoveCommand(ctx),
		newListCommand(ctx),
	}
}

// lookupRecord finds the record for an ID or title. IDs already suggested are
// taken from the store; anything else goes to the metadata provider.
func (s *session) lookupRecord(arg string, year int) (movie.Record, error) {
	arg = strings.TrimSpace(arg)
	if looksLikeID(arg) {
		if rec, loc, err := s.library.Find(s.ctx, arg); err == nil && loc == library.LocationSuggestion {
			return rec, nil
		}
	}
	meta, err := s.metadata()
	if err != nil {
		return movie.Record{}, err
	}
	var rec *movie.Record
	if looksLikeID(arg) {
		rec, err = meta.FetchDetails(s.ctx, arg)
	} else {
		rec, err = meta.LookupByExactTitle(s.ctx, arg, year)
	}
	if err != nil {
		return movie.Record{}, err
	}
	if rec == nil {
		return movie.Record{}, services.Wrap(services.ErrNotFound, "cli", "lookup", fmt.Sprintf("no movie matches %q", arg), nil)
	}
	return *rec, nil
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "add <id|title>",
		Short: "Add a movie to the to-watch list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := strings.Join(args, " ")
			return ctx.withSession(cmd, "add", func(s *session) error {
				rec, err := s.lookupRecord(arg, year)
				if err != nil {
					return err
				}
				if _, err := s.library.AddToWatch(s.ctx, rec); err != nil {
					return err
				}
				return reportRecord(cmd, ctx, rec, "Added %s to your to-watch list")
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Release year used when adding by title")
	return cmd
}

func newWatchedCommand(ctx *commandContext) *cobra.Command {
	var year int
	var rating int

	cmd := &cobra.Command{
		Use:   "watched <id|title>",
		Short: "Mark a movie as watched with a 1-10 rating",
		Long:  "Moves a to-watch entry into the watched list, or adds a new movie there directly.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := strings.Join(args, " ")
			return ctx.withSession(cmd, "watched", func(s *session) error {
				if id, err := s.resolveID(arg); err == nil {
					rec, loc, err := s.library.Find(s.ctx, id)
					if err != nil {
						return err
					}
					if loc == library.LocationToWatch {
						if _, err := s.library.MarkAsWatched(s.ctx, id, rating); err != nil {
							return err
						}
						return reportRecord(cmd, ctx, rec.WithRating(rating), "Marked %s as watched")
					}
				}
				rec, err := s.lookupRecord(arg, year)
				if err != nil {
					return err
				}
				if _, err := s.library.AddWatched(s.ctx, rec, rating); err != nil {
					return err
				}
				return reportRecord(cmd, ctx, rec.WithRating(rating), "Added %s to your watched list")
			})
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Your rating from 1 to 10")
	cmd.Flags().IntVar(&year, "year", 0, "Release year used when adding by title")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func newUnwatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unwatch <id|title>",
		Short: "Move a watched movie back to the to-watch list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "unwatch", func(s *session) error {
				id, err := s.resolveID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				state, err := s.library.MarkAsUnwatched(s.ctx, id)
				if err != nil {
					return err
				}
				return reportRecord(cmd, ctx, state.ToWatch[0], "Moved %s back to your to-watch list")
			})
		},
	}
}

func newRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id|title> <rating>",
		Short: "Change the rating of a watched movie",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[len(args)-1])
			if err != nil {
				return fmt.Errorf("rating must be a whole number: %w", library.ErrInvalidRating)
			}
			target := strings.Join(args[:len(args)-1], " ")
			return ctx.withSession(cmd, "rate", func(s *session) error {
				id, err := s.resolveID(target)
				if err != nil {
					return err
				}
				if _, err := s.library.SetRating(s.ctx, id, rating); err != nil {
					return err
				}
				rec, _, err := s.library.Find(s.ctx, id)
				if err != nil {
					return err
				}
				return reportRecord(cmd, ctx, rec, "Rated %s")
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id|title>",
		Aliases: []string{"rm"},
		Short:   "Remove a movie from whichever list holds it",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, "remove", func(s *session) error {
				id, err := s.resolveID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				rec, _, err := s.library.Find(s.ctx, id)
				if err != nil {
					return err
				}
				if _, err := s.library.Remove(s.ctx, id); err != nil {
					return err
				}
				return reportRecord(cmd, ctx, rec, "Removed %s")
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:       "list [towatch|watched|all]",
		Aliases:   []string{"ls"},
		Short:     "Show saved movies",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"towatch", "watched", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "all"
			if len(args) == 1 {
				which = strings.ToLower(strings.TrimSpace(args[0]))
			}
			switch which {
			case "towatch", "to-watch", "watched", "all":
			default:
				return fmt.Errorf("unknown list %q (want towatch, watched, or all)", args[0])
			}
			key, err := library.ParseSortKey(sortFlag)
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, "list", func(s *session) error {
				state, err := s.store.Load(s.ctx)
				if err != nil {
					return err
				}
				toWatch := library.Sorted(state.ToWatch, key)
				watched := library.Sorted(state.Watched, key)

				if ctx.jsonOutput() {
					payload := map[string][]movie.Record{}
					if which != "watched" {
						payload["toWatch"] = toWatch
					}
					if which == "watched" || which == "all" {
						payload["watched"] = watched
					}
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				if which != "watched" {
					printSection(out, "To watch", toWatch, false)
				}
				if which == "watched" || which == "all" {
					printSection(out, "Watched", watched, true)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&sortFlag, "sort", "s", "added", "Sort by added, title, year, rating, or imdb")
	return cmd
}

func printSection(out io.Writer, title string, records []movie.Record, withRating bool) {
	fmt.Fprintf(out, "%s (%d)\n", title, len(records))
	if len(records) == 0 {
		fmt.Fprintln(out, "  nothing here yet")
		return
	}
	printRecords(out, records, withRating, false)
}

// reportRecord prints a one-line confirmation, or the record itself in JSON
// mode.
func reportRecord(cmd *cobra.Command, ctx *commandContext, rec movie.Record, format string) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, rec)
	}
	label := fmt.Sprintf("%s (%s)", textutil.DisplayTitle(rec.Title), orDash(rec.Year))
	if rec.UserRating != nil {
		label += " " + ratingLabel(rec)
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", label)
	return nil
}
