package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"libris/internal/books"
	"libris/internal/search"
	"libris/internal/services"
	"libris/internal/textutil"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books across Gutenberg, Open Library, and Google Books",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aggregator, err := ctx.ensureAggregator()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			runCtx := services.WithRequestID(cmd.Context(), uuid.NewString())
			result, err := aggregator.Search(runCtx, query, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			printInterpretation(out, result)
			if len(result.Books) == 0 {
				fmt.Fprintln(out, "No books found.")
				return nil
			}

			headers := []string{"#", "Title", "Authors", "Source", "Year", "Score", "ID"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			rows := make([][]string, 0, len(result.Books))
			for i, scored := range result.Books {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					textutil.TruncateWords(scored.Book.Title, 8),
					textutil.TruncateWords(scored.Book.AuthorNames(), 6),
					scored.Book.Source.String(),
					publishYear(scored.Book),
					strconv.FormatFloat(scored.Relevance, 'f', 1, 64),
					scored.Book.ID,
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))

			if result.Partial {
				for _, status := range result.Sources {
					if status.Error != "" {
						fmt.Fprintf(out, "warning: %s unavailable (%s)\n", status.Source, status.Error)
					}
				}
			}
			if result.FromCache {
				fmt.Fprintln(out, "(served from cache)")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func printInterpretation(out io.Writer, result search.Result) {
	interp := result.Interpretation
	var parts []string
	if interp.Author != "" {
		parts = append(parts, "author="+interp.Author)
	}
	if interp.Genre != "" {
		parts = append(parts, "genre="+interp.Genre)
	}
	if len(interp.Keywords) > 0 {
		parts = append(parts, "keywords="+strings.Join(interp.Keywords, ","))
	}
	if len(parts) > 0 {
		fmt.Fprintf(out, "Understood query as: %s\n", strings.Join(parts, " "))
	}
}

func publishYear(book books.Book) string {
	date := strings.TrimSpace(book.PublishedDate)
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}
