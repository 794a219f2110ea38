package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinelist/internal/omdb"
	"cinelist/internal/textutil"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var year int
	var kind string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the metadata provider by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withSession(cmd, "search", func(s *session) error {
				meta, err := s.metadata()
				if err != nil {
					return err
				}
				results, err := meta.SearchByText(s.ctx, query, omdb.Filters{Year: year, Type: kind})
				if err != nil {
					return err
				}
				state, err := s.store.Load(s.ctx)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintf(out, "No results for %q\n", query)
					return nil
				}
				rows := make([][]string, 0, len(results))
				for i, rec := range results {
					saved := ""
					switch {
					case state.InLists(rec.ID):
						saved = "saved"
					case state.Known(rec.ID):
						saved = "suggested"
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						rec.ID,
						textutil.DisplayTitle(rec.Title),
						orDash(rec.Year),
						orDash(rec.Type),
						saved,
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"#", "ID", "Title", "Year", "Type", ""},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Restrict results to a release year")
	cmd.Flags().StringVar(&kind, "type", "", "Restrict results to movie, series, or episode")
	return cmd
}
